package ssq

import "fmt"

// MinInfoProtocol is the oldest A2S_INFO protocol version that is decoded.
const MinInfoProtocol = 0x07

// ParseInfo decodes an A2S_INFO reply body (the bytes following the simple
// header, starting with the 'I' type byte). Decoding either yields the whole
// record or fails; no partial record is returned.
func ParseInfo(body []byte) (*ServerInfo, error) {
	r := newReader(body)

	kind, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if kind != S2AInfo {
		return nil, &HeaderError{Expected: S2AInfo, Actual: kind}
	}

	info := &ServerInfo{}
	if info.Protocol, err = r.readByte(); err != nil {
		return nil, err
	}
	if info.Protocol < MinInfoProtocol {
		return nil, fmt.Errorf("%w: info protocol version %d", ErrUnsupportedReply, info.Protocol)
	}

	for _, field := range []*string{&info.Name, &info.Map, &info.Folder, &info.Game} {
		if *field, err = r.readString(); err != nil {
			return nil, err
		}
	}

	if info.AppID, err = r.readUint16(); err != nil {
		return nil, err
	}

	counters, err := r.readBytes(3)
	if err != nil {
		return nil, err
	}
	info.Players, info.MaxPlayers, info.Bots = counters[0], counters[1], counters[2]

	// server type, environment, visibility, vac
	flags, err := r.readBytes(4)
	if err != nil {
		return nil, err
	}
	info.ServerType = parseServerType(flags[0])
	info.Environment = parseEnvironment(flags[1])
	info.Password = flags[2] == 0x01
	info.VAC = flags[3] == 0x01

	if info.Version, err = r.readString(); err != nil {
		return nil, err
	}

	if r.remaining() == 0 {
		return info, nil
	}

	edf, err := r.readByte()
	if err != nil {
		return nil, err
	}
	extra, err := parseExtraData(r, ExtraDataFlag(edf))
	if err != nil {
		return nil, err
	}
	if extra.Flags&edfKnown != 0 {
		info.Extra = extra
	}

	return info, nil
}

// parseExtraData reads the optional trailing fields. The bits are processed in
// wire order; a field whose bit is clear is not read.
func parseExtraData(r *reader, flags ExtraDataFlag) (*ExtraData, error) {
	var err error
	extra := &ExtraData{Flags: flags}

	if flags.Has(EDFPort) {
		if extra.Port, err = r.readUint16(); err != nil {
			return nil, err
		}
	}

	if flags.Has(EDFSteamID) {
		if extra.SteamID, err = r.readUint64(); err != nil {
			return nil, err
		}
	}

	if flags.Has(EDFSourceTV) {
		tv := &SourceTV{}
		if tv.Port, err = r.readUint16(); err != nil {
			return nil, err
		}
		if tv.Name, err = r.readString(); err != nil {
			return nil, err
		}
		extra.SourceTV = tv
	}

	if flags.Has(EDFKeywords) {
		if extra.Keywords, err = r.readString(); err != nil {
			return nil, err
		}
	}

	if flags.Has(EDFGameID) {
		if extra.GameID, err = r.readUint64(); err != nil {
			return nil, err
		}
	}

	return extra, nil
}

func parseServerType(b byte) ServerType {
	switch b {
	case 'l':
		return ServerTypeListen
	case 'd':
		return ServerTypeDedicated
	case 'p':
		return ServerTypeSourceTV
	default:
		return ServerTypeUnknown
	}
}

func parseEnvironment(b byte) Environment {
	switch b {
	case 'l':
		return EnvironmentLinux
	case 'w':
		return EnvironmentWindows
	default:
		return EnvironmentUnknown
	}
}
