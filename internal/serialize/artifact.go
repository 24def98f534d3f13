package serialize

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"pvc/internal/eval"
	"pvc/internal/ir"
)

// magic identifies a main.pvc artifact; readers reject anything else
// outright rather than attempting to decode garbage as a Module.
var magic = [4]byte{'P', 'V', 'C', '1'}

// WriteArtifact writes the self-describing compile output: a magic
// header, the build id stamping which compiler invocation produced it,
// the Module, and the partially-evaluated RunResult ready to resume.
func WriteArtifact(w io.Writer, buildID uuid.UUID, module *ir.Module, result eval.RunResult) error {
	sw := NewWriter(w)
	sw.raw(magic[:])
	idBytes, err := buildID.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialize: marshal build id: %w", err)
	}
	sw.raw(idBytes)
	WriteModule(sw, module)
	WriteResult(sw, result)
	return sw.Err()
}

// ReadArtifact reverses WriteArtifact, returning the stamped build id
// alongside the decoded Module and RunResult. The id is not validated
// against anything; `run` only reports it in verbose mode.
func ReadArtifact(r io.Reader) (uuid.UUID, *ir.Module, eval.RunResult, error) {
	sr := NewReader(r)
	got := sr.raw(4)
	if sr.Err() != nil {
		return uuid.UUID{}, nil, nil, sr.Err()
	}
	if string(got) != string(magic[:]) {
		return uuid.UUID{}, nil, nil, fmt.Errorf("serialize: not a pvc artifact")
	}
	idBytes := sr.raw(16)
	buildID, err := uuid.FromBytes(idBytes)
	if err != nil {
		return uuid.UUID{}, nil, nil, fmt.Errorf("serialize: malformed build id: %w", err)
	}
	module := ReadModule(sr)
	result := ReadResult(sr)
	if sr.Err() != nil {
		return uuid.UUID{}, nil, nil, sr.Err()
	}
	return buildID, module, result, nil
}
