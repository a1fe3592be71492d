// Package jstream provides the wire constants, byte cursor, and error
// taxonomy for Java object serialization streams.
package jstream

// Stream header.
const (
	StreamMagic   uint16 = 0xaced
	StreamVersion uint16 = 0x0005
)

// Tag bytes that introduce each content element.
const (
	TcNull           byte = 0x70
	TcReference      byte = 0x71
	TcClassDesc      byte = 0x72
	TcObject         byte = 0x73
	TcString         byte = 0x74
	TcArray          byte = 0x75
	TcClass          byte = 0x76
	TcBlockData      byte = 0x77
	TcEndBlockData   byte = 0x78
	TcReset          byte = 0x79 // not handled
	TcBlockDataLong  byte = 0x7a
	TcException      byte = 0x7b // not handled
	TcLongString     byte = 0x7c
	TcProxyClassDesc byte = 0x7d
	TcEnum           byte = 0x7e
)

// BaseWireHandle is the first handle assigned in a stream.
const BaseWireHandle int32 = 0x7e0000

// classDescFlags bits.
const (
	ScWriteMethod    byte = 0x01 // if ScSerializable
	ScSerializable   byte = 0x02
	ScExternalizable byte = 0x04
	ScBlockData      byte = 0x08 // if ScExternalizable
	ScEnum           byte = 0x10
)

var tagNames = map[byte]string{
	TcNull:           "TC_NULL",
	TcReference:      "TC_REFERENCE",
	TcClassDesc:      "TC_CLASSDESC",
	TcObject:         "TC_OBJECT",
	TcString:         "TC_STRING",
	TcArray:          "TC_ARRAY",
	TcClass:          "TC_CLASS",
	TcBlockData:      "TC_BLOCKDATA",
	TcEndBlockData:   "TC_ENDBLOCKDATA",
	TcReset:          "TC_RESET",
	TcBlockDataLong:  "TC_BLOCKDATALONG",
	TcException:      "TC_EXCEPTION",
	TcLongString:     "TC_LONGSTRING",
	TcProxyClassDesc: "TC_PROXYCLASSDESC",
	TcEnum:           "TC_ENUM",
}

// TagName returns the protocol name of a tag byte, or "" if unknown.
func TagName(tag byte) string {
	return tagNames[tag]
}
