package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
	// PCDCompressed binary format for pcd.
	PCDCompressed PCDType = 2
)

// WriteToPCDFile writes the cloud to a new file at path.
func WriteToPCDFile(cloud PointCloud, path string, outputType PCDType) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	if err := ToPCD(cloud, w, outputType); err != nil {
		return err
	}
	return w.Flush()
}

// ToPCD writes the cloud as an unorganized PCD v0.7 file. Points carrying a value get an extra
// integer "value" field.
func ToPCD(cloud PointCloud, out io.Writer, outputType PCDType) error {
	var err error

	_, err = fmt.Fprintf(out, "VERSION .7\n")
	if err != nil {
		return err
	}
	switch cloud.MetaData().HasValue {
	case true:
		_, err = fmt.Fprintf(out, "FIELDS x y z value\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F I\n"+
			"COUNT 1 1 1 1\n")
	case false:
		_, err = fmt.Fprintf(out, "FIELDS x y z\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n",
		cloud.Size(),
		1,
		cloud.Size())
	if err != nil {
		return err
	}

	switch outputType {
	case PCDBinary:
		_, err = fmt.Fprintf(out, "DATA binary\n")
	case PCDAscii:
		_, err = fmt.Fprintf(out, "DATA ascii\n")
	case PCDCompressed:
		return errors.New("compressed PCD not yet implemented")
	default:
		return errors.Errorf("unknown PCD type %d", outputType)
	}
	if err != nil {
		return err
	}
	return writePCDData(cloud, out, outputType)
}

func writePCDData(cloud PointCloud, out io.Writer, pcdtype PCDType) error {
	hasValue := cloud.MetaData().HasValue
	var err error
	cloud.Iterate(0, 0, func(pos r3.Vector, d Data) bool {
		value := 0
		if d != nil && d.HasValue() {
			value = d.Value()
		}
		switch pcdtype {
		case PCDBinary:
			size := 12
			if hasValue {
				size = 16
			}
			buf := make([]byte, size)
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(pos.X)))
			binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(pos.Y)))
			binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(pos.Z)))
			if hasValue {
				binary.LittleEndian.PutUint32(buf[12:], uint32(int32(value)))
			}
			_, err = out.Write(buf)
		case PCDAscii, PCDCompressed:
			line := formatPCDFloat(pos.X) + " " + formatPCDFloat(pos.Y) + " " + formatPCDFloat(pos.Z)
			if hasValue {
				line += " " + strconv.Itoa(value)
			}
			_, err = io.WriteString(out, line+"\n")
		}
		return err == nil
	})
	return err
}

// formatPCDFloat writes the shortest text that parses back to the float32 stored by the binary
// body, so ascii and binary files hold the same points.
func formatPCDFloat(v float64) string {
	return strconv.FormatFloat(float64(float32(v)), 'g', -1, 32)
}

type pcdFieldType int

const (
	pcdPointOnly  pcdFieldType = 3
	pcdPointValue pcdFieldType = 4
)

type pcdHeader struct {
	fields pcdFieldType
	size   []uint64
	count  []uint64
	width  uint64
	height uint64
	points uint64
	data   PCDType
}

const pcdCommentChar = "#"

var pcdHeaderFields = []string{"VERSION", "FIELDS", "SIZE", "TYPE", "COUNT", "WIDTH", "HEIGHT", "VIEWPOINT", "POINTS", "DATA"}

func parseUintTokens(name string, tokens []string, fields pcdFieldType) ([]uint64, error) {
	if len(tokens) != int(fields) {
		return nil, errors.Errorf("unexpected number of fields in %s line", name)
	}
	out := make([]uint64, len(tokens))
	for i, token := range tokens {
		var err error
		out[i], err = strconv.ParseUint(token, 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid %s field %s", name, token)
		}
	}
	return out, nil
}

func parsePCDHeaderLine(line string, index int, header *pcdHeader) error {
	var err error
	name := pcdHeaderFields[index]
	field, value, _ := strings.Cut(line, " ")
	tokens := strings.Split(value, " ")
	if field != name {
		return errors.Errorf("line is supposed to start with %s but is %s", name, line)
	}

	switch name {
	case "VERSION":
		if value != ".7" {
			return errors.Errorf("unsupported pcd version %s", value)
		}
	case "FIELDS":
		switch value {
		case "x y z":
			header.fields = pcdPointOnly
		case "x y z value":
			header.fields = pcdPointValue
		default:
			return errors.Errorf("unsupported pcd fields %s", value)
		}
	case "SIZE":
		if header.size, err = parseUintTokens(name, tokens, header.fields); err != nil {
			return err
		}
		for _, size := range header.size {
			if size != 4 {
				return errors.Errorf("unsupported field size %d", size)
			}
		}
	case "TYPE":
		if len(tokens) != int(header.fields) {
			return errors.New("unexpected number of fields in TYPE line")
		}
	case "COUNT":
		if header.count, err = parseUintTokens(name, tokens, header.fields); err != nil {
			return err
		}
	case "WIDTH":
		header.width, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Errorf("invalid WIDTH field %s: %s", value, err)
		}
	case "HEIGHT":
		header.height, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Errorf("invalid HEIGHT field %s: %s", value, err)
		}
	case "VIEWPOINT":
		if len(tokens) != 7 {
			return errors.Errorf("unexpected number of fields in VIEWPOINT line. Expected 7, got %d", len(tokens))
		}
	case "POINTS":
		var points uint64
		points, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Errorf("invalid POINTS field %s: %s", value, err)
		}
		if points != header.width*header.height {
			return errors.Errorf("POINTS field %d does not match WIDTH*HEIGHT %d", points, header.width*header.height)
		}
		header.points = points
	case "DATA":
		switch value {
		case "ascii":
			header.data = PCDAscii
		case "binary":
			header.data = PCDBinary
		case "binary_compressed":
			header.data = PCDCompressed
		default:
			return errors.Errorf("unsupported pcd data type %s", value)
		}
	}
	return nil
}

// ReadPCD reads a point cloud written by ToPCD.
func ReadPCD(inRaw io.Reader) (PointCloud, error) {
	header := pcdHeader{}
	in := bufio.NewReader(inRaw)
	headerLineCount := 0
	for headerLineCount < len(pcdHeaderFields) {
		line, err := in.ReadString('\n')
		if err != nil {
			return nil, errors.Errorf("error reading header line %d: %s", headerLineCount, err)
		}
		line, _, _ = strings.Cut(line, pcdCommentChar)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := parsePCDHeaderLine(line, headerLineCount, &header); err != nil {
			return nil, err
		}
		headerLineCount++
	}
	switch header.data {
	case PCDAscii:
		return readPCDAscii(in, header)
	case PCDBinary:
		return readPCDBinary(in, header)
	case PCDCompressed:
		return nil, errors.New("compressed pcd not yet supported")
	default:
		return nil, errors.Errorf("unsupported pcd data type %v", header.data)
	}
}

func readPCDAscii(in *bufio.Reader, header pcdHeader) (PointCloud, error) {
	pc := NewWithPrealloc(int(header.points))
	for i := 0; i < int(header.points); i++ {
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, errors.Wrapf(err, "reading point %d", i)
		}
		tokens := strings.Fields(line)
		if len(tokens) != int(header.fields) {
			return nil, errors.Errorf("unexpected number of fields in point %d", i)
		}
		point := make([]float64, len(tokens))
		for j, token := range tokens {
			bitSize := 64
			if j < 3 {
				// coordinates are declared as SIZE 4 floats.
				bitSize = 32
			}
			point[j], err = strconv.ParseFloat(token, bitSize)
			if err != nil {
				return nil, errors.Errorf("invalid point %d field %s: %s", i, token, err)
			}
		}
		if err := pc.Append(readSliceToPoint(point, header)); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

func readPCDBinary(in *bufio.Reader, header pcdHeader) (PointCloud, error) {
	pc := NewWithPrealloc(int(header.points))
	buf := make([]byte, 4*int(header.fields))
	for i := 0; i < int(header.points); i++ {
		if _, err := io.ReadFull(in, buf); err != nil {
			return nil, errors.Wrapf(err, "reading point %d", i)
		}
		point := make([]float64, int(header.fields))
		for j := 0; j < 3; j++ {
			point[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:])))
		}
		if header.fields == pcdPointValue {
			point[3] = float64(int32(binary.LittleEndian.Uint32(buf[12:])))
		}
		if err := pc.Append(readSliceToPoint(point, header)); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

func readSliceToPoint(slice []float64, header pcdHeader) (r3.Vector, Data) {
	pos := r3.Vector{X: slice[0], Y: slice[1], Z: slice[2]}
	if header.fields == pcdPointValue {
		return pos, NewValueData(int(slice[3]))
	}
	return pos, NewBasicData()
}
