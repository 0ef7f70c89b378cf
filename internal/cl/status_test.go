package cl

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Success, "CL_SUCCESS"},
		{InvalidValue, "CL_INVALID_VALUE"},
		{OutOfHostMemory, "CL_OUT_OF_HOST_MEMORY"},
		{BuildProgramFailure, "CL_BUILD_PROGRAM_FAILURE"},
		{PlatformNotFoundKHR, "CL_PLATFORM_NOT_FOUND_KHR"},
		{Status(-9999), "CL_UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int32(tt.status), got, tt.want)
		}
	}
}

func TestStatusDescribe(t *testing.T) {
	if got := OutOfHostMemory.Describe(); got != "CL_OUT_OF_HOST_MEMORY (-6)" {
		t.Errorf("unexpected description: %q", got)
	}
}

func TestStatusIsInvalid(t *testing.T) {
	for _, s := range []Status{InvalidValue, InvalidDevice, InvalidKernelName, InvalidOperation} {
		if !s.IsInvalid() {
			t.Errorf("%s should be in the invalid family", s)
		}
	}
	for _, s := range []Status{Success, OutOfHostMemory, BuildProgramFailure, DeviceNotFound} {
		if s.IsInvalid() {
			t.Errorf("%s should not be in the invalid family", s)
		}
	}
	if PlatformNotFoundKHR.IsInvalid() {
		t.Error("CL_PLATFORM_NOT_FOUND_KHR should not be in the invalid family")
	}
}

func TestOpenWithoutGPUTag(t *testing.T) {
	rt, err := Open()
	if err == nil {
		// Built with -tags gpu; nothing to check here.
		if rt == nil {
			t.Fatal("Open returned nil runtime without error")
		}
		return
	}
	if err != ErrNotBuilt {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
}
