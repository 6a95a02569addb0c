package dids

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bnonni/tool5/agent/dht"
	"github.com/bnonni/tool5/method"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	DocumentFile     = "did.json"
	PortableFile     = "portable-did.json"
	RegistrationFile = "registration.json"
)

func writeJSON(filename string, data []byte, perm os.FileMode) (err error) {
	defer err2.Handle(&err, "write %s", filename)

	var buf bytes.Buffer
	try.To(json.Indent(&buf, data, "", "  "))
	buf.WriteByte('\n')

	try.To(os.MkdirAll(filepath.Dir(filename), 0700))
	return os.WriteFile(filename, buf.Bytes(), perm)
}

// writeDid writes the public document and the portable DID to out.
func writeDid(out string, b *method.Bearer) (err error) {
	defer err2.Handle(&err, "write did %s", b.URI())

	try.To(writeJSON(filepath.Join(out, DocumentFile), try.To1(b.Doc().JSONBytes()), 0644))
	p := try.To1(b.Export())
	return p.Save(filepath.Join(out, PortableFile))
}

func writeRegistration(out string, r *dht.Registration) (err error) {
	defer err2.Handle(&err, "write registration %s", r.DID)

	return writeJSON(filepath.Join(out, RegistrationFile), try.To1(json.Marshal(r)), 0644)
}

func writeResolution(out string, res *did.DocResolution) (err error) {
	defer err2.Handle(&err, "write resolution")

	return writeJSON(filepath.Join(out, DocumentFile), try.To1(res.JSONBytes()), 0644)
}
