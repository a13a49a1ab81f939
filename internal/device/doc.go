// Package device holds the per-device instance store (spec §3): devices,
// parameter instances, class instantiations, and the case-insensitive path
// tree used to resolve a (device, path) target to an instance.
package device
