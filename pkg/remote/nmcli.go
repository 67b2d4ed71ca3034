package remote

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/newtron-network/cfgnet/pkg/task"
	"github.com/newtron-network/cfgnet/pkg/util"
)

const (
	// RouteProbeAddress is looked up to find the host's outbound device.
	RouteProbeAddress = "8.8.8.8"
	// TestCommand is the read-only command run in diagnostic mode.
	TestCommand = "uptime"
	// ReloadCommand makes NetworkManager re-read connection profiles.
	ReloadCommand = "nmcli connection reload"
)

var uuidRegexp = regexp.MustCompile(`^[0-9a-f]{8}(-[0-9a-f]{4}){3}-[0-9a-f]{12}$`)

// ProfileError reports that no connection profile UUID could be extracted
// from "nmcli device connect" output.
type ProfileError struct {
	Device string
	Output string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("get connection uuid of device %s: unexpected output %q", e.Device, strings.TrimSpace(e.Output))
}

func (e *ProfileError) Unwrap() error {
	return util.ErrProfileResolution
}

// ProbeRouteCommand asks the kernel which device reaches RouteProbeAddress.
func ProbeRouteCommand() string {
	return "ip route get " + RouteProbeAddress
}

// ConnectDeviceCommand activates device and prints the profile it used.
func ConnectDeviceCommand(device string) string {
	return "nmcli device connect " + util.Quote(device)
}

// UpCommand activates a connection profile.
func UpCommand(profile string) string {
	return "nmcli connection up " + util.Quote(profile)
}

// FamilyName returns the nmcli setting name for an address family.
func FamilyName(family int) (string, error) {
	switch family {
	case 4:
		return "ipv4", nil
	case 6:
		return "ipv6", nil
	default:
		return "", fmt.Errorf("unknown address family: %d", family)
	}
}

// BuildModifyCommand builds the single "nmcli connection modify" command
// for t. Only properties present on the task are included; a task with no
// address, gateway or DNS yields ErrNothingToConfigure.
func BuildModifyCommand(profile string, t *task.Task) (string, error) {
	family, err := FamilyName(t.Family)
	if err != nil {
		return "", err
	}
	prop := t.Mode.Prefix() + family

	parts := []string{fmt.Sprintf("nmcli connection modify %s %s.method manual", util.Quote(profile), family)}
	if t.Address != nil {
		value := t.Address.String()
		if t.PrefixLen > 0 {
			value = fmt.Sprintf("%s/%d", value, t.PrefixLen)
		}
		parts = append(parts, fmt.Sprintf("%s.addresses %s", prop, util.Quote(value)))
	}
	if t.Gateway != nil {
		parts = append(parts, fmt.Sprintf("%s.gateway %s", prop, util.Quote(t.Gateway.String())))
	}
	if t.DNS != "" {
		parts = append(parts, fmt.Sprintf("%s.dns %s", prop, util.Quote(t.DNS)))
	}
	if len(parts) == 1 {
		return "", fmt.Errorf("%w: no address, gateway or dns for %s", util.ErrNothingToConfigure, t.Host())
	}
	return strings.Join(parts, " "), nil
}

// ParseRouteDevice extracts the device name from "ip route get" output,
// e.g. "8.8.8.8 via 10.0.0.1 dev eth0 src 10.0.0.5 uid 0".
func ParseRouteDevice(output string) (string, error) {
	fields := strings.Fields(output)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "dev" {
			return fields[i+1], nil
		}
	}
	if len(fields) >= 5 {
		return fields[4], nil
	}
	return "", fmt.Errorf("unexpected route output: %q", strings.TrimSpace(output))
}

// ParseProfileUUID extracts the trailing quoted UUID from "nmcli device
// connect" output, e.g.
// "Device 'eth0' successfully activated with '5fb06bd0-0bb0-7ffb-45f1-d6edd65f3e03'."
func ParseProfileUUID(device, output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", &ProfileError{Device: device, Output: output}
	}
	last := strings.Trim(strings.Trim(fields[len(fields)-1], "."), "'")
	if !uuidRegexp.MatchString(last) {
		return "", &ProfileError{Device: device, Output: output}
	}
	return last, nil
}
