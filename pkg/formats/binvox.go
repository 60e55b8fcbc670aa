package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/frustumvox/pkg/voxel"
)

// Binvox format errors.
var (
	ErrInvalidBinvoxMagic       = errors.New("invalid binvox magic: expected '#binvox'")
	ErrUnsupportedBinvoxVersion = errors.New("unsupported binvox version")
	ErrInvalidBinvoxHeader      = errors.New("invalid binvox header")
	ErrTruncatedBinvoxData      = errors.New("truncated binvox data")
	ErrInvalidBinvoxRun         = errors.New("invalid binvox run")
)

const (
	binvoxMagic   = "#binvox"
	binvoxVersion = 1
	maxBinvoxRun  = 255
)

// Binvox is a run-length encoded dense voxel file.
//
// On disk the x index varies slowest, then z, then y. Grid holds the
// voxels in (x, y, z) order with z fastest.
type Binvox struct {
	Translate [3]float64
	Scale     float64
	Grid      *voxel.Dense
}

// NewBinvox wraps a grid with the unit-cube placement used for normalized
// models: translate (-0.5, -0.5, -0.5) and scale 1.
func NewBinvox(grid *voxel.Dense) *Binvox {
	return &Binvox{
		Translate: [3]float64{-0.5, -0.5, -0.5},
		Scale:     1,
		Grid:      grid,
	}
}

// ParseBinvox parses a binvox file from raw bytes.
func ParseBinvox(data []byte) (*Binvox, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	line, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(line, binvoxMagic) {
		return nil, ErrInvalidBinvoxMagic
	}
	version, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, binvoxMagic)))
	if err != nil || version != binvoxVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBinvoxVersion, line)
	}

	bv := &Binvox{Scale: 1}
	var dims voxel.Dims
	haveDims := false

	// Header fields until "data".
	for {
		line, err := readHeaderLine(r)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "dim":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBinvoxHeader, line)
			}
			for i := 0; i < 3; i++ {
				if dims[i], err = strconv.Atoi(fields[i+1]); err != nil || dims[i] <= 0 {
					return nil, fmt.Errorf("%w: %q", ErrInvalidBinvoxHeader, line)
				}
			}
			haveDims = true
		case "translate":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBinvoxHeader, line)
			}
			for i := 0; i < 3; i++ {
				if bv.Translate[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
					return nil, fmt.Errorf("%w: %q", ErrInvalidBinvoxHeader, line)
				}
			}
		case "scale":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBinvoxHeader, line)
			}
			if bv.Scale, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBinvoxHeader, line)
			}
		case "data":
			if !haveDims {
				return nil, fmt.Errorf("%w: missing dim", ErrInvalidBinvoxHeader)
			}
			grid, err := decodeBinvoxRuns(r, dims)
			if err != nil {
				return nil, err
			}
			bv.Grid = grid
			return bv, nil
		default:
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidBinvoxHeader, fields[0])
		}
	}
}

// readHeaderLine reads one newline-terminated header line.
func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: header", ErrTruncatedBinvoxData)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// decodeBinvoxRuns reads (value, count) byte pairs into a grid.
func decodeBinvoxRuns(r io.ByteReader, dims voxel.Dims) (*voxel.Dense, error) {
	grid, err := voxel.NewDense(dims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBinvoxHeader, err)
	}
	data := grid.Data()
	total := dims.Len()

	pos := 0
	for pos < total {
		value, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: run value at voxel %d", ErrTruncatedBinvoxData, pos)
		}
		count, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: run count at voxel %d", ErrTruncatedBinvoxData, pos)
		}
		if value > 1 || count == 0 || pos+int(count) > total {
			return nil, fmt.Errorf("%w: value=%d count=%d at voxel %d", ErrInvalidBinvoxRun, value, count, pos)
		}
		if value == 1 {
			for n := pos; n < pos+int(count); n++ {
				data[fileToGrid(dims, n)] = true
			}
		}
		pos += int(count)
	}
	return grid, nil
}

// fileToGrid converts a file-order offset (x, z, y; y fastest) to a grid
// offset (x, y, z; z fastest).
func fileToGrid(dims voxel.Dims, n int) int {
	y := n % dims[1]
	z := (n / dims[1]) % dims[2]
	x := n / (dims[1] * dims[2])
	return (x*dims[1]+y)*dims[2] + z
}

// ParseBinvoxFile parses a binvox file from disk.
func ParseBinvoxFile(path string) (*Binvox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading binvox file: %w", err)
	}
	return ParseBinvox(data)
}

// WriteBinvox encodes bv to w.
func WriteBinvox(w io.Writer, bv *Binvox) error {
	if bv == nil || bv.Grid == nil {
		return fmt.Errorf("%w: no grid", ErrInvalidBinvoxHeader)
	}
	dims := bv.Grid.Dims()
	data := bv.Grid.Data()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d\n", binvoxMagic, binvoxVersion)
	fmt.Fprintf(bw, "dim %d %d %d\n", dims[0], dims[1], dims[2])
	fmt.Fprintf(bw, "translate %s %s %s\n",
		formatFloat(bv.Translate[0]), formatFloat(bv.Translate[1]), formatFloat(bv.Translate[2]))
	fmt.Fprintf(bw, "scale %s\n", formatFloat(bv.Scale))
	fmt.Fprintf(bw, "data\n")

	total := dims.Len()
	var value bool
	count := 0
	for n := 0; n < total; n++ {
		v := data[fileToGrid(dims, n)]
		if count > 0 && (v != value || count == maxBinvoxRun) {
			writeRun(bw, value, count)
			count = 0
		}
		value = v
		count++
	}
	if count > 0 {
		writeRun(bw, value, count)
	}
	return bw.Flush()
}

func writeRun(w *bufio.Writer, value bool, count int) {
	b := byte(0)
	if value {
		b = 1
	}
	w.WriteByte(b)
	w.WriteByte(byte(count))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Encode returns the binvox encoding of bv.
func (bv *Binvox) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBinvox(&buf, bv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveBinvoxFile writes bv to path, creating parent directories. The data
// is written under a temporary name and renamed into place.
func SaveBinvoxFile(path string, bv *Binvox) error {
	data, err := bv.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
