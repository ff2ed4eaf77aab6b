// Package models defines client-side data models used by the CodeForge CLI:
// session identity, judge reports, problems, submissions and dashboard
// aggregates.
package models
