// Package serial implements transport.Transport over a physical serial
// port using github.com/cesanta/go-serial/serial, configured for the
// 8 data bits / even parity / 1 stop bit framing the AN3155 bootloader
// expects.
package serial
