// Package netdev provides the network interface handle exposed to the
// network stack, its templated name allocation, and outbound frames.
package netdev
