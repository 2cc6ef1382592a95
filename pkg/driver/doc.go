// Package driver binds bus devices to device sessions.
//
// A Driver is registered with a bus enumerator. For every matching device
// that appears it runs the attach sequence in a new session, and it
// detaches the session when the device is removed or the driver is
// unregistered:
//
//	drv, err := driver.New(cfg)
//	if err != nil {
//	    return err
//	}
//	enum.RegisterDriver(ctx, drv)
//	enum.Add(ctx, bus.NewSimDevice("0000:03:00.0", driver.DefaultIDTable[0]))
//
// All sessions share one interface name allocator and one resource
// allocator, so interface names are unique across devices.
package driver
