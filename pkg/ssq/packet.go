package ssq

import (
	"bytes"
	"fmt"
)

// Request and reply type bytes.
const (
	A2SInfo      byte = 0x54 // 'T'
	A2SPlayer    byte = 0x55 // 'U'
	S2AInfo      byte = 0x49 // 'I'
	S2CChallenge byte = 0x41 // 'A'
	S2APlayer    byte = 0x44 // 'D'
)

// InfoPayload is the literal text carried by an A2S_INFO request.
const InfoPayload = "Source Engine Query"

// ChallengeLen is the size of a challenge id.
const ChallengeLen = 4

// minDatagram is the simple header plus a type byte.
const minDatagram = 5

var (
	simpleHeader = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	splitHeader  = []byte{0xFE, 0xFF, 0xFF, 0xFF}
)

// InfoRequest builds the A2S_INFO request datagram.
func InfoRequest() []byte {
	return infoRequest(nil)
}

// infoRequest builds an A2S_INFO request, appending challenge when the server asked for one.
func infoRequest(challenge []byte) []byte {
	packet := make([]byte, 0, len(simpleHeader)+1+len(InfoPayload)+1+len(challenge))
	packet = append(packet, simpleHeader...)
	packet = append(packet, A2SInfo)
	packet = append(packet, InfoPayload...)
	packet = append(packet, 0x00)

	return append(packet, challenge...)
}

// ChallengeRequest builds the A2S_PLAYER probe used to obtain a challenge id.
func ChallengeRequest() []byte {
	return PlayerRequest([ChallengeLen]byte{})
}

// PlayerRequest builds the A2S_PLAYER request carrying challenge verbatim.
func PlayerRequest(challenge [ChallengeLen]byte) []byte {
	packet := make([]byte, 0, len(simpleHeader)+1+ChallengeLen)
	packet = append(packet, simpleHeader...)
	packet = append(packet, A2SPlayer)

	return append(packet, challenge[:]...)
}

// StripHeader validates the 4-byte simple response marker of an inbound
// datagram and returns the remaining body, starting at the type byte.
func StripHeader(datagram []byte) ([]byte, error) {
	if len(datagram) < minDatagram {
		return nil, fmt.Errorf("%w: datagram of %d bytes", ErrMalformedResponse, len(datagram))
	}

	header := datagram[:len(simpleHeader)]
	switch {
	case bytes.Equal(header, simpleHeader):
		return datagram[len(simpleHeader):], nil
	case bytes.Equal(header, splitHeader):
		return nil, fmt.Errorf("%w: split packet response", ErrUnsupportedReply)
	default:
		return nil, fmt.Errorf("%w: unknown header % X", ErrMalformedResponse, header)
	}
}
