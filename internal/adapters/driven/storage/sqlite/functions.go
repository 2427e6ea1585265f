package sqlite

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"modernc.org/sqlite"

	"github.com/custodia-labs/sercha-rag/internal/similarity"
)

// cosineFunc is the SQL name of the similarity function.
const cosineFunc = "vec_cosine"

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs vec_cosine on every connection the driver opens.
// The driver registry is process-wide, so this runs once.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction(cosineFunc, 2, vecCosine)
	})
	return registerErr
}

// vecCosine scores two float32 BLOBs. NULL in either argument yields NULL.
func vecCosine(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, ok := args[0].([]byte)
	if !ok || len(a) == 0 {
		return nil, nil
	}
	b, ok := args[1].([]byte)
	if !ok || len(b) == 0 {
		return nil, nil
	}
	if len(a)%4 != 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%s: blob length is not a multiple of 4", cosineFunc)
	}
	score, err := similarity.Cosine(decodeVector(a), decodeVector(b))
	if err != nil {
		return nil, err
	}
	return score, nil
}

// encodeVector converts a []float32 to a little-endian BLOB.
func encodeVector(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector converts a BLOB back to []float32.
func decodeVector(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
