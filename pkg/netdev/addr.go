package netdev

import (
	"crypto/rand"
	"fmt"
	"net"
)

// RandomHardwareAddr returns a random 48-bit unicast, locally administered
// hardware address.
func RandomHardwareAddr() (net.HardwareAddr, error) {
	addr := make(net.HardwareAddr, 6)
	if _, err := rand.Read(addr); err != nil {
		return nil, fmt.Errorf("generate hardware address: %w", err)
	}
	addr[0] &^= 0x01 // unicast
	addr[0] |= 0x02  // locally administered
	return addr, nil
}

// IsLocalUnicast returns true for a 48-bit unicast, locally administered
// address.
func IsLocalUnicast(addr net.HardwareAddr) bool {
	return len(addr) == 6 && addr[0]&0x01 == 0 && addr[0]&0x02 != 0
}
