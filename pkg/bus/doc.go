// Package bus defines the device and driver contracts of a PCI-like bus
// and provides an in-memory Enumerator and SimDevice for exercising drivers
// without hardware.
//
// A device is matched to a driver by its vendor/device ID. The Enumerator
// calls Driver.Attach when a matching device appears or a driver is
// registered, and Driver.Detach when the device is removed or the driver
// unregistered.
package bus
