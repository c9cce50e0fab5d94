// Package profiles registers the known sheet layouts with the core registry.
// Import this package to ensure all layouts are registered.
package profiles
