// Copyright EpiMind Project, 2026. All rights reserved.

// Package types defines shared data structures for the EpiMind pipeline:
// the clinical dataset consumed by scoring, candidate and validated facts
// produced by document extraction, the risk result, and configuration.
package types
