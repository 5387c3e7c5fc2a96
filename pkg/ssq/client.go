// Package ssq queries game servers speaking the Source Engine Query (A2S)
// protocol over UDP and decodes server and player information.
package ssq

import (
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
)

// Client runs A2S queries. It holds no per-server state; one Client may be
// used from several goroutines as long as its Transport allows it.
type Client struct {
	// Transport performs the datagram exchanges.
	Transport Transport

	// Logger receives exchange traces. Disabled by default.
	Logger zerolog.Logger

	// Strict makes QueryInfo and QueryPlayers reject hosts resolving to several addresses.
	Strict bool
}

// New returns a Client using a UDPTransport with default timeouts.
func New() *Client {
	return &Client{
		Transport: NewUDPTransport(),
		Logger:    zerolog.Nop(),
		Strict:    true,
	}
}

// QueryInfo resolves host and port and runs GetServerInfo.
func (c *Client) QueryInfo(host string, port int) (*ServerInfo, error) {
	endpoint, err := c.resolve(host, port)
	if err != nil {
		return nil, err
	}

	return c.GetServerInfo(endpoint)
}

// QueryPlayers resolves host and port and runs GetPlayers.
func (c *Client) QueryPlayers(host string, port int) ([]PlayerInfo, error) {
	endpoint, err := c.resolve(host, port)
	if err != nil {
		return nil, err
	}

	return c.GetPlayers(endpoint)
}

// GetServerInfo sends an A2S_INFO request to endpoint and decodes the reply.
// A server that answers with a challenge gets the request again with the
// challenge appended, once.
func (c *Client) GetServerInfo(endpoint *net.UDPAddr) (*ServerInfo, error) {
	body, err := c.exchange(endpoint, InfoRequest())
	if err != nil {
		return nil, err
	}

	if body[0] == S2CChallenge {
		challenge, err := ParseChallenge(body)
		if err != nil {
			return nil, err
		}

		c.Logger.Trace().Str("endpoint", endpoint.String()).Hex("challenge", challenge[:]).Msg("Info challenge received")

		if body, err = c.exchange(endpoint, infoRequest(challenge[:])); err != nil {
			return nil, err
		}
		if body[0] == S2CChallenge {
			return nil, fmt.Errorf("%w: repeated info challenge", ErrUnsupportedReply)
		}
	}

	return ParseInfo(body)
}

// GetPlayers runs the A2S_PLAYER challenge handshake against endpoint.
//
// A transport failure while obtaining the challenge is returned as
// ErrUnreachable. A server that does not answer the probe with a challenge, or
// that does not answer the player request at all, yields an empty list and no
// error, so servers without player reporting degrade gracefully. A truncated
// player list is ErrMalformedResponse.
func (c *Client) GetPlayers(endpoint *net.UDPAddr) ([]PlayerInfo, error) {
	logger := c.Logger.With().Str("endpoint", endpoint.String()).Logger()

	challenge, err := c.challenge(endpoint)
	if errors.Is(err, ErrUnsupportedReply) {
		logger.Debug().Err(err).Msg("Player query not supported")
		return []PlayerInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	body, err := c.exchange(endpoint, PlayerRequest(challenge))
	if errors.Is(err, ErrUnreachable) || errors.Is(err, ErrUnsupportedReply) {
		logger.Debug().Err(err).Msg("No usable reply to player request")
		return []PlayerInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	if body[0] != S2APlayer {
		logger.Debug().Hex("type", body[:1]).Msg("Unexpected player reply")
		return []PlayerInfo{}, nil
	}

	return ParsePlayers(body)
}

// challenge obtains an A2S_PLAYER challenge id. Replies of another type are
// reported as ErrUnsupportedReply.
func (c *Client) challenge(endpoint *net.UDPAddr) ([ChallengeLen]byte, error) {
	body, err := c.exchange(endpoint, ChallengeRequest())
	if err != nil {
		return [ChallengeLen]byte{}, err
	}

	if body[0] != S2CChallenge {
		return [ChallengeLen]byte{}, fmt.Errorf("%w: challenge reply type 0x%02X", ErrUnsupportedReply, body[0])
	}

	return ParseChallenge(body)
}

// exchange sends request and returns the reply body after the simple header.
// The returned body is never empty.
func (c *Client) exchange(endpoint *net.UDPAddr, request []byte) ([]byte, error) {
	if c.Transport == nil {
		return nil, fmt.Errorf("%w: no transport", ErrUnreachable)
	}

	reply, err := c.Transport.Exchange(endpoint, request)
	if err != nil {
		if !errors.Is(err, ErrUnreachable) {
			err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return nil, err
	}

	c.Logger.Trace().
		Str("endpoint", endpoint.String()).
		Int("sent", len(request)).
		Int("received", len(reply)).
		Msg("Datagram exchanged")

	return StripHeader(reply)
}

func (c *Client) resolve(host string, port int) (*net.UDPAddr, error) {
	if c.Strict {
		return Resolve(host, port)
	}

	return ResolveAny(host, port)
}
