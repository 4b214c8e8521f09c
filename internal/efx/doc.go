// Package efx implements the binary .efx artifact format and the effect
// payload carried by each timeline entry.
//
// Layout (little-endian):
//
//	magic      [4]byte  "EFX1"
//	version    uint16
//	reserved   uint16
//	musicID    uint32   audio fingerprint, 0 when no audio is attached
//	count      uint32   number of entries that follow
//	entries    count x { timestamp uint32, effectIndex uint32, payloadLen uint16, payload }
package efx
