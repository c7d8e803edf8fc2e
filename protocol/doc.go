// Package protocol implements the STM32 ROM bootloader wire protocol.
//
// This package provides functions to build command frames and parse
// response frames according to ST application note AN3155 (USART
// protocol used in the STM32 bootloader).
//
// # Protocol overview
//
// Unlike a fixed-header packet protocol, AN3155 defines a different frame
// shape per command:
//
//	Command frame:  [OPCODE][~OPCODE]              -> ACK
//	Address frame:  [ADDR(4, big-endian)][XOR CHK] -> ACK
//	Data frame:     [N][DATA...][PAD...][XOR CHK]  -> ACK
//
// ACK is 0x79, NACK is 0x1F. Every frame is followed by a blocking wait
// for a single acknowledgement byte; there is no pipelining.
//
// # Command builders
//
// Use the Build* functions to construct the bytes for a command and its
// following frames:
//
//	frame := protocol.BuildCommandFrame(protocol.CmdGetID)
//	frame := protocol.BuildAddressFrame(0x08000000)
//	frame, err := protocol.BuildWriteDataFrame(payload)
//
// # Response parsers
//
// Use the Parse* functions to interpret bytes read back from the target,
// for example ParseGetVersion and ParseGetID.
//
// # Error handling
//
// A NACK surfaces as a *NackError; any other unexpected response byte
// surfaces as a *ProtocolError carrying the operation name and a reason.
//
// # Reference
//
// AN3155 - USART protocol used in the STM32 bootloader.
package protocol
