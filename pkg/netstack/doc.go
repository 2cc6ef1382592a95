// Package netstack defines the contract between a network interface and
// the network stack, and provides Stack, an in-memory implementation.
package netstack
