// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go: rendering, rasterizing, PDF assembly and
// scanning all happen behind driven ports.
package services
