package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

// A LogContextAdder adds fields to every log entry, for example the current
// state of a running component.
type LogContextAdder interface {
	AddLogContext(entry *EntryZ)
}

var contexts []LogContextAdder

// AddContext registers ctx so that its fields are added to all log entries.
func AddContext(ctx LogContextAdder) {
	contexts = append(contexts, ctx)
}

// RemoveContext unregisters a context previously added with AddContext.
func RemoveContext(ctx LogContextAdder) {
	for i := range contexts {
		if contexts[i] == ctx {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}

const maxZFields = 16

// EntryZ is a log entry builder that doesn't allocate for each field. A nil
// *EntryZ is valid and discards everything, this is what Module returns when
// the level is disabled.
type EntryZ struct {
	lvl   Level
	msg   string
	mod   Module
	zfbuf [maxZFields]ZField
	zfidx int
}

var entryzPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	z := entryzPool.Get().(*EntryZ)
	z.zfidx = 0
	return z
}

func (z *EntryZ) field(key string, typ FieldType) *ZField {
	if z == nil || z.zfidx == len(z.zfbuf) {
		return nil
	}
	f := &z.zfbuf[z.zfidx]
	*f = ZField{Type: typ, Key: key}
	z.zfidx++
	return f
}

func (z *EntryZ) Bool(key string, v bool) *EntryZ {
	if f := z.field(key, FieldTypeBool); f != nil {
		f.Boolean = v
	}
	return z
}

func (z *EntryZ) String(key string, v string) *EntryZ {
	if f := z.field(key, FieldTypeString); f != nil {
		f.String = v
	}
	return z
}

func (z *EntryZ) Hex8(key string, v uint8) *EntryZ {
	if f := z.field(key, FieldTypeHex8); f != nil {
		f.Integer = uint64(v)
	}
	return z
}

func (z *EntryZ) Hex16(key string, v uint16) *EntryZ {
	if f := z.field(key, FieldTypeHex16); f != nil {
		f.Integer = uint64(v)
	}
	return z
}

func (z *EntryZ) Int(key string, v int) *EntryZ {
	if f := z.field(key, FieldTypeInt); f != nil {
		f.Integer = uint64(v)
	}
	return z
}

func (z *EntryZ) Uint(key string, v uint64) *EntryZ {
	if f := z.field(key, FieldTypeUint); f != nil {
		f.Integer = v
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if f := z.field(key, FieldTypeError); f != nil {
		f.Error = err
	}
	return z
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	if f := z.field(key, FieldTypeDuration); f != nil {
		f.Duration = d
	}
	return z
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	if f := z.field(key, FieldTypeStringer); f != nil {
		f.Interface = s
	}
	return z
}

// End emits the entry and recycles it. The entry must not be used afterwards.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.zfidx)
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	entry := Entry{mod: z.mod}.log().WithFields(fields)
	lvl, msg := z.lvl, z.msg

	clear(z.zfbuf[:z.zfidx])
	z.zfidx = 0
	entryzPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	}
}
