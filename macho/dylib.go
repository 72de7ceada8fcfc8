package macho

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// Dylib is a parsed LC_LOAD_DYLIB-family command: LC_LOAD_DYLIB,
// LC_ID_DYLIB, LC_LOAD_WEAK_DYLIB, LC_REEXPORT_DYLIB and LC_LOAD_UPWARD_DYLIB
// all share the dylib_command layout and differ only in cmd.
type Dylib struct {
	cmd            types.LoadCmd
	raw            []byte
	Name           string
	Timestamp      uint32
	CurrentVersion uint32
	CompatVersion  uint32
}

func (d *Dylib) Command() types.LoadCmd { return d.cmd }
func (d *Dylib) Raw() []byte            { return d.raw }

func parseDylib(r *boundsreader.BoundsReader, cmd types.LoadCmd, cmdOffset int64, cmdSize uint32) (*Dylib, error) {
	raw, err := r.ReadBytes(cmdOffset, int64(cmdSize))
	if err != nil {
		return nil, err
	}
	nameOff, err := r.ReadU32(cmdOffset + 8)
	if err != nil {
		return nil, err
	}
	timestamp, err := r.ReadU32(cmdOffset + 12)
	if err != nil {
		return nil, err
	}
	curVer, err := r.ReadU32(cmdOffset + 16)
	if err != nil {
		return nil, err
	}
	compatVer, err := r.ReadU32(cmdOffset + 20)
	if err != nil {
		return nil, err
	}
	name, err := r.ReadFixedString(cmdOffset+int64(nameOff), int64(cmdSize)-int64(nameOff))
	if err != nil {
		return nil, err
	}
	return &Dylib{
		cmd:            cmd,
		raw:            raw,
		Name:           name,
		Timestamp:      timestamp,
		CurrentVersion: curVer,
		CompatVersion:  compatVer,
	}, nil
}
