package sim

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/jobendik/laser-sub002/internal/agent"
)

// DumpRecord is one notification in the event dump.
type DumpRecord struct {
	Run    string     `json:"run"`
	Time   float64    `json:"t"`
	Agent  int        `json:"agent"`
	Kind   string     `json:"kind"`
	Target int        `json:"target"`
	Point  [3]float64 `json:"point"`
	Old    string     `json:"old,omitempty"`
	New    string     `json:"new,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// Dump writes notifications as zstd-compressed JSON lines. It implements
// agent.Listener; the first write error is kept and returned by Close.
type Dump struct {
	run string
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
	err error
}

// NewDump starts a dump on w tagged with a fresh run id.
func NewDump(w io.Writer) (*Dump, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, errors.Wrap(err, "zstd writer")
	}
	return &Dump{
		run: uuid.NewString(),
		enc: enc,
		w:   bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// RunID returns the id stamped on every record.
func (d *Dump) RunID() string { return d.run }

// Records returns how many records were written.
func (d *Dump) Records() int { return d.n }

// Notify implements agent.Listener.
func (d *Dump) Notify(n agent.Notification) {
	if d.err != nil {
		return
	}
	rec := DumpRecord{
		Run:    d.run,
		Time:   n.Time,
		Agent:  int(n.Agent),
		Kind:   n.Kind.String(),
		Target: int(n.Target),
		Point:  [3]float64(n.Point),
		Reason: n.Reason,
	}
	if n.Kind == agent.AlertLevelChanged {
		rec.Old, rec.New = n.Old.String(), n.New.String()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		d.err = errors.Wrap(err, "encode record")
		return
	}
	if _, err := d.w.Write(b); err != nil {
		d.err = errors.Wrap(err, "write record")
		return
	}
	if err := d.w.WriteByte('\n'); err != nil {
		d.err = errors.Wrap(err, "write record")
		return
	}
	d.n++
}

// Close flushes and finishes the zstd frame. It does not close the
// underlying writer.
func (d *Dump) Close() error {
	if err := d.w.Flush(); err != nil && d.err == nil {
		d.err = errors.Wrap(err, "flush dump")
	}
	if err := d.enc.Close(); err != nil && d.err == nil {
		d.err = errors.Wrap(err, "close zstd")
	}
	return d.err
}

// ReadDump decodes every record of a dump.
func ReadDump(r io.Reader) ([]DumpRecord, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "zstd reader")
	}
	defer dec.Close()
	var out []DumpRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec DumpRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return out, errors.Wrapf(err, "decode record %d", len(out)+1)
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(sc.Err(), "scan dump")
}
