// Package programmer implements the AN3155 bootloader session: autobaud
// handshake, device discovery, erase, write, verify and go, layered on
// top of package protocol's wire primitives and a transport.Transport.
//
// # Usage
//
//	port, _ := serial.Open("/dev/ttyUSB0", 115200)
//	sess := programmer.New(port, programmer.WithLogger(myLogger))
//
//	if err := sess.Handshake(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := sess.Discover(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sess.EraseAll(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sess.WriteImage(ctx, img); err != nil {
//	    log.Fatal(err)
//	}
package programmer
