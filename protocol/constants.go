package protocol

// ProtocolVersion identifies the AN3155 revision this package targets.
const ProtocolVersion = "AN3155"

// Wire-level framing constants.
const (
	// Ack is the single-byte positive acknowledgement.
	Ack = 0x79

	// Nack is the single-byte negative acknowledgement. Observed but not
	// required: some commands never NACK, they simply time out instead.
	Nack = 0x1F

	// InitByte is sent repeatedly during the autobaud handshake.
	InitByte = 0x7F

	// HandshakeRetries is the number of additional 0x7F sends attempted
	// after the first, before giving up (11 attempts total).
	HandshakeRetries = 10

	// MaxWriteBlockSize is the maximum payload size, in bytes, of a single
	// WRITE_MEM data-block frame.
	MaxWriteBlockSize = 256

	// MaxReadBlockSize is the maximum payload size, in bytes, of a single
	// READ_MEM response.
	MaxReadBlockSize = 256

	// MaxLegacyErasePages is the largest page count the legacy ERASE
	// command can address in one frame.
	MaxLegacyErasePages = 256

	// MaxExtendedErasePages is the largest page count EXTENDED_ERASE can
	// address in one frame.
	MaxExtendedErasePages = 0xFFF0
)

// Command opcodes per AN3155 section 3.
const (
	CmdGetVersion     = 0x00 // GET
	CmdGetReadStatus  = 0x01 // GET_READ_STATUS (not used by this driver)
	CmdGetID          = 0x02 // GET ID
	CmdReadMem        = 0x11 // READ MEMORY
	CmdGo             = 0x21 // GO
	CmdWriteMem       = 0x31 // WRITE MEMORY
	CmdErase          = 0x43 // ERASE (legacy, page-index bytes)
	CmdExtendedErase  = 0x44 // EXTENDED ERASE (u16 page indices)
	CmdWriteProtect   = 0x63 // WRITE PROTECT (unused)
	CmdWriteUnprotect = 0x73 // WRITE UNPROTECT (unused)
	CmdReadProtect    = 0x82 // READOUT PROTECT (unused)
	CmdReadUnprotect  = 0x92 // READOUT UNPROTECT (unused)
)

// knownOpcodes lists, in the fixed index order used by CommandSet, every
// opcode the driver is able to recognize in a GET_VERSION reply.
var knownOpcodes = [12]byte{
	CmdGetVersion,
	CmdGetReadStatus,
	CmdGetID,
	CmdReadMem,
	CmdGo,
	CmdWriteMem,
	CmdErase,
	CmdExtendedErase,
	CmdWriteProtect,
	CmdWriteUnprotect,
	CmdReadProtect,
	CmdReadUnprotect,
}
