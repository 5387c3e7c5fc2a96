package ssq

// ParseChallenge decodes an S2C_CHALLENGE reply body and returns the challenge
// id exactly as received. A body with another type byte yields a HeaderError.
func ParseChallenge(body []byte) ([ChallengeLen]byte, error) {
	var challenge [ChallengeLen]byte
	r := newReader(body)

	kind, err := r.readByte()
	if err != nil {
		return challenge, err
	}
	if kind != S2CChallenge {
		return challenge, &HeaderError{Expected: S2CChallenge, Actual: kind}
	}

	raw, err := r.readBytes(ChallengeLen)
	if err != nil {
		return challenge, err
	}
	copy(challenge[:], raw)

	return challenge, nil
}

// ParsePlayers decodes an A2S_PLAYER reply body. Exactly the declared number of
// records is decoded; bytes after the last record are ignored.
func ParsePlayers(body []byte) ([]PlayerInfo, error) {
	r := newReader(body)

	kind, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if kind != S2APlayer {
		return nil, &HeaderError{Expected: S2APlayer, Actual: kind}
	}

	count, err := r.readByte()
	if err != nil {
		return nil, err
	}

	players := make([]PlayerInfo, 0, count)
	for i := 0; i < int(count); i++ {
		var p PlayerInfo
		if p.Index, err = r.readByte(); err != nil {
			return nil, err
		}
		if p.Name, err = r.readString(); err != nil {
			return nil, err
		}
		if p.Score, err = r.readInt32(); err != nil {
			return nil, err
		}
		if p.Duration, err = r.readFloat32(); err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, nil
}
