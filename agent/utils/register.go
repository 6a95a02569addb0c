package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type (
	keyDID    = string
	valueType = []string
)

type regMapType map[keyDID]valueType

// Reg is a JSON file backed register of the DIDs this tool has written. The
// key is the DID URI and the value lists the directories holding its files,
// the latest last.
type Reg struct {
	r regMapType
	l sync.Mutex
}

func newReg(data []byte) (r regMapType, err error) {
	r = make(regMapType)
	if err = json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reg) Exist(key keyDID) bool {
	r.l.Lock()
	defer r.l.Unlock()
	_, ok := r.r[key]
	return ok
}

// Add appends dir to the key's directories unless it's already there.
func (r *Reg) Add(key keyDID, dir string) {
	glog.V(3).Infof("DID register add: %s -> %s", key, dir)
	r.l.Lock()
	defer r.l.Unlock()
	if r.r == nil {
		r.r = make(regMapType)
	}
	for _, d := range r.r[key] {
		if d == dir {
			return
		}
	}
	r.r[key] = append(r.r[key], dir)
}

// Get returns the directories of the key, the latest last.
func (r *Reg) Get(key keyDID) []string {
	r.l.Lock()
	defer r.l.Unlock()
	return append([]string(nil), r.r[key]...)
}

func (r *Reg) Load(filename string) (err error) {
	defer err2.Handle(&err, "load register")

	r.l.Lock()
	defer r.l.Unlock()

	if filename == "" {
		r.r = make(regMapType)
		return nil
	}

	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		r.r = make(regMapType)
		return nil
	}
	try.To(err)

	r.r = try.To1(newReg(data))
	return nil
}

func (r *Reg) Save(filename string) (err error) {
	defer err2.Handle(&err, "save register")

	r.l.Lock()
	defer r.l.Unlock()

	data := try.To1(json.MarshalIndent(r.r, "", "\t"))
	try.To(os.MkdirAll(filepath.Dir(filename), 0o700))
	return os.WriteFile(filename, data, 0o600)
}

// LoadRegister is a helper which returns a loaded register.
func LoadRegister(filename string) (r *Reg, err error) {
	r = new(Reg)
	return r, r.Load(filename)
}
