package compute

import (
	"errors"
	"fmt"

	"github.com/cwbudde/sodecl/internal/cl"
)

// Platform is one OpenCL platform together with the devices it exposes.
// Device indices follow the runtime enumeration order at discovery time.
type Platform struct {
	id      cl.PlatformID
	name    string
	vendor  string
	version string
	profile string
	devices []*Device
}

// newPlatform discovers every device of id. On failure all device handles
// acquired so far are released and no Platform is returned.
func newPlatform(rt cl.Runtime, id cl.PlatformID) (*Platform, error) {
	name, st := rt.PlatformInfo(id, cl.PlatformName)
	if st != cl.Success {
		return nil, newRuntimeError(cl.OpPlatformInfo, st)
	}
	vendor, st := rt.PlatformInfo(id, cl.PlatformVendor)
	if st != cl.Success {
		return nil, newRuntimeError(cl.OpPlatformInfo, st)
	}
	version, st := rt.PlatformInfo(id, cl.PlatformVersion)
	if st != cl.Success {
		return nil, newRuntimeError(cl.OpPlatformInfo, st)
	}

	profile, st := rt.PlatformInfo(id, cl.PlatformProfile)
	if st != cl.Success {
		return nil, newRuntimeError(cl.OpPlatformInfo, st)
	}

	p := &Platform{id: id, name: name, vendor: vendor, version: version, profile: profile}

	count, st := rt.DeviceCount(id, cl.DeviceTypeAll)
	if st == cl.DeviceNotFound || (st == cl.Success && count == 0) {
		return p, nil
	}
	if st != cl.Success {
		return nil, enumerationError(name, newRuntimeError(cl.OpDeviceCount, st))
	}

	ids, st := rt.DeviceIDs(id, cl.DeviceTypeAll, count)
	if st != cl.Success {
		return nil, enumerationError(name, newRuntimeError(cl.OpDeviceIDs, st))
	}

	p.devices = make([]*Device, 0, len(ids))
	for i, did := range ids {
		dev, err := newDevice(rt, did)
		if err != nil {
			// Devices already wrapped are released by Close; the rest
			// (including did) are released directly.
			for _, rest := range ids[i:] {
				rt.ReleaseDevice(rest)
			}
			closeErr := p.Close(rt)
			return nil, errors.Join(enumerationError(name, fmt.Errorf("device %d: %w", i, err)), closeErr)
		}
		p.devices = append(p.devices, dev)
	}

	return p, nil
}

func enumerationError(platform string, err error) error {
	return fmt.Errorf("%w on platform %q: %w", ErrDeviceEnumeration, platform, err)
}

// ID returns the runtime handle.
func (p *Platform) ID() cl.PlatformID { return p.id }

// Name returns CL_PLATFORM_NAME.
func (p *Platform) Name() string { return p.name }

// Vendor returns CL_PLATFORM_VENDOR.
func (p *Platform) Vendor() string { return p.vendor }

// Version returns CL_PLATFORM_VERSION.
func (p *Platform) Version() string { return p.version }

// DeviceCount returns the number of devices discovered on p.
func (p *Platform) DeviceCount() int { return len(p.devices) }

// Device returns the device at index i.
func (p *Platform) Device(i int) (*Device, bool) {
	if i < 0 || i >= len(p.devices) {
		return nil, false
	}
	return p.devices[i], true
}

// Devices returns the devices in enumeration order.
func (p *Platform) Devices() []*Device {
	return append([]*Device(nil), p.devices...)
}

// Info returns a serializable snapshot of p and its devices.
func (p *Platform) Info() PlatformInfo {
	info := PlatformInfo{
		Name:    p.name,
		Vendor:  p.vendor,
		Version: p.version,
		Profile: p.profile,
		Devices: make([]DeviceInfo, len(p.devices)),
	}
	for i, d := range p.devices {
		info.Devices[i] = d.Info()
		info.Devices[i].Index = i
	}
	return info
}

// Close releases the devices of p in reverse discovery order.
func (p *Platform) Close(rt cl.Runtime) error {
	var errs []error
	for i := len(p.devices) - 1; i >= 0; i-- {
		if err := p.devices[i].release(rt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
