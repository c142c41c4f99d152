package catalog

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/RMahshie/wigwag/pkg/models"
)

var npyMagic = []byte("\x93NUMPY")

// Limits on header-declared sizes.
const (
	maxHeaderLen   = 1 << 20
	maxFieldSize   = 1 << 12
	maxRecordSize  = 1 << 16
	recordCapacity = 4096
)

// npyField is one member of a structured dtype.
type npyField struct {
	name  string
	kind  byte // 'f', 'i', 'u', 'U', 'S', 'b', ...
	size  int  // bytes
	order byte // '<', '>', '|', '='
}

// readNPY decodes a one-dimensional NumPy structured array.
func readNPY(r io.Reader) ([]models.SourceRecord, error) {
	br := bufio.NewReader(r)

	preamble := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, preamble); err != nil {
		return nil, fmt.Errorf("%w: npy preamble: %v", ErrCatalogRead, err)
	}
	if !bytes.Equal(preamble[:len(npyMagic)], npyMagic) {
		return nil, fmt.Errorf("%w: not an npy file", ErrCatalogRead)
	}

	var headerLen int
	switch major := preamble[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: npy header length: %v", ErrCatalogRead, err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: npy header length: %v", ErrCatalogRead, err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("%w: unsupported npy version %d", ErrCatalogRead, major)
	}

	if headerLen > maxHeaderLen {
		return nil, fmt.Errorf("%w: npy header length %d exceeds %d", ErrCatalogRead, headerLen, maxHeaderLen)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: npy header: %v", ErrCatalogRead, err)
	}
	dtype, count, err := parseNPYHeader(string(header))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
	}

	recordSize := 0
	for _, f := range dtype {
		recordSize += f.size
	}
	if recordSize <= 0 || recordSize > maxRecordSize {
		return nil, fmt.Errorf("%w: npy record size %d out of range", ErrCatalogRead, recordSize)
	}
	if err := checkColumns(dtype); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
	}

	// count is untrusted; a short body fails on read below
	records := make([]models.SourceRecord, 0, min(count, recordCapacity))
	buf := make([]byte, recordSize)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCatalogRead, i, err)
		}
		rec, err := decodeRecord(dtype, buf)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCatalogRead, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func checkColumns(dtype []npyField) error {
	present := make(map[string]npyField, len(dtype))
	for _, f := range dtype {
		present[f.name] = f
	}
	for _, name := range FieldNames() {
		f, ok := present[name]
		if !ok {
			return fmt.Errorf("missing column %q", name)
		}
		if name == NameField {
			if f.kind != 'U' && f.kind != 'S' {
				return fmt.Errorf("column %q must be a string, got %c%d", name, f.kind, f.size)
			}
			continue
		}
		if f.kind != 'f' || (f.size != 8 && f.size != 4) {
			return fmt.Errorf("column %q must be a float, got %c%d", name, f.kind, f.size)
		}
	}
	return nil
}

func decodeRecord(dtype []npyField, buf []byte) (models.SourceRecord, error) {
	var rec models.SourceRecord
	offset := 0
	for _, f := range dtype {
		raw := buf[offset : offset+f.size]
		offset += f.size

		if f.name == NameField {
			rec.Name = decodeString(f, raw)
			continue
		}
		set := setterFor(f.name)
		if set == nil {
			continue
		}
		v, err := decodeFloat(f, raw)
		if err != nil {
			return rec, err
		}
		set(&rec, v)
	}
	return rec, nil
}

func setterFor(name string) func(*models.SourceRecord, float64) {
	for _, f := range fields {
		if f.name == name {
			return f.set
		}
	}
	return nil
}

func decodeString(f npyField, raw []byte) string {
	if f.kind == 'S' {
		return strings.TrimRight(string(raw), "\x00")
	}
	var order binary.ByteOrder = binary.LittleEndian
	if f.order == '>' {
		order = binary.BigEndian
	}
	runes := make([]rune, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		c := order.Uint32(raw[i:])
		if c == 0 {
			break
		}
		runes = append(runes, rune(c))
	}
	return string(runes)
}

func decodeFloat(f npyField, raw []byte) (float64, error) {
	var order binary.ByteOrder = binary.LittleEndian
	if f.order == '>' {
		order = binary.BigEndian
	}
	switch f.size {
	case 8:
		return math.Float64frombits(order.Uint64(raw)), nil
	case 4:
		return float64(math.Float32frombits(order.Uint32(raw))), nil
	}
	return 0, fmt.Errorf("%s: unsupported float size %d", f.name, f.size)
}

// parseNPYHeader extracts the structured dtype and record count from the
// header dictionary literal.
func parseNPYHeader(header string) ([]npyField, int, error) {
	p := &literalParser{src: strings.TrimSpace(header)}
	v, err := p.value()
	if err != nil {
		return nil, 0, fmt.Errorf("npy header: %w", err)
	}
	dict, ok := v.(map[string]any)
	if !ok {
		return nil, 0, errors.New("npy header is not a dictionary")
	}

	if fo, _ := dict["fortran_order"].(bool); fo {
		return nil, 0, errors.New("fortran-ordered arrays are not supported")
	}

	shape, ok := dict["shape"].([]any)
	if !ok || len(shape) != 1 {
		return nil, 0, fmt.Errorf("expected a one-dimensional array, got shape %v", dict["shape"])
	}
	count, ok := shape[0].(int)
	if !ok || count < 0 {
		return nil, 0, fmt.Errorf("invalid shape %v", shape)
	}

	descr, ok := dict["descr"].([]any)
	if !ok {
		return nil, 0, fmt.Errorf("expected a structured dtype, got %v", dict["descr"])
	}
	dtype := make([]npyField, 0, len(descr))
	for _, d := range descr {
		pair, ok := d.([]any)
		if !ok || len(pair) != 2 {
			return nil, 0, fmt.Errorf("unsupported dtype member %v", d)
		}
		name, ok1 := pair[0].(string)
		typ, ok2 := pair[1].(string)
		if !ok1 || !ok2 {
			return nil, 0, fmt.Errorf("unsupported dtype member %v", d)
		}
		f, err := parseTypeString(name, typ)
		if err != nil {
			return nil, 0, err
		}
		dtype = append(dtype, f)
	}
	return dtype, count, nil
}

// parseTypeString parses a NumPy type string such as "<f8", "<U20" or "|S16".
func parseTypeString(name, typ string) (npyField, error) {
	if len(typ) < 2 {
		return npyField{}, fmt.Errorf("%s: bad type %q", name, typ)
	}
	f := npyField{name: name, order: '|'}
	rest := typ
	switch typ[0] {
	case '<', '>', '|', '=':
		f.order = typ[0]
		rest = typ[1:]
	}
	if f.order == '=' {
		f.order = '<'
	}
	if len(rest) < 2 {
		return npyField{}, fmt.Errorf("%s: bad type %q", name, typ)
	}
	f.kind = rest[0]
	if !strings.ContainsRune("fiubUS", rune(f.kind)) {
		return npyField{}, fmt.Errorf("%s: unsupported type %q", name, typ)
	}
	n, err := strconv.Atoi(rest[1:])
	if err != nil || n <= 0 || n > maxFieldSize {
		return npyField{}, fmt.Errorf("%s: bad type %q", name, typ)
	}
	f.size = n
	if f.kind == 'U' {
		f.size = 4 * n
	}
	if f.order == '>' && f.kind != 'S' {
		return npyField{}, fmt.Errorf("%s: big-endian type %q is not supported", name, typ)
	}
	return f, nil
}

// literalParser reads the subset of Python literals used in npy headers.
type literalParser struct {
	src string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (any, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.dict()
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.integer()
	case c == 0:
		return nil, errors.New("unexpected end of header")
	default:
		return p.word()
	}
}

func (p *literalParser) dict() (map[string]any, error) {
	p.pos++
	out := map[string]any{}
	for {
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		k, err := p.str()
		if err != nil {
			return nil, err
		}
		if p.peek() != ':' {
			return nil, fmt.Errorf("expected ':' at offset %d", p.pos)
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[k] = v
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, fmt.Errorf("expected ',' or '}' at offset %d", p.pos)
		}
	}
}

func (p *literalParser) sequence(open, closing byte) ([]any, error) {
	p.pos++
	out := []any{}
	for {
		if p.peek() == closing {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
		default:
			return nil, fmt.Errorf("expected ',' or %q at offset %d", closing, p.pos)
		}
	}
}

func (p *literalParser) str() (string, error) {
	q := p.peek()
	if q != '\'' && q != '"' {
		return "", fmt.Errorf("expected string at offset %d", p.pos)
	}
	end := strings.IndexByte(p.src[p.pos+1:], q)
	if end < 0 {
		return "", errors.New("unterminated string")
	}
	s := p.src[p.pos+1 : p.pos+1+end]
	p.pos += end + 2
	return s, nil
}

func (p *literalParser) integer() (int, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	// NumPy on some platforms writes long literals such as 3L.
	n, err := strconv.Atoi(p.src[start:p.pos])
	if p.pos < len(p.src) && p.src[p.pos] == 'L' {
		p.pos++
	}
	if err != nil {
		return 0, fmt.Errorf("bad integer at offset %d", start)
	}
	return n, nil
}

func (p *literalParser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= 'A' && p.src[p.pos] <= 'z') {
		p.pos++
	}
	switch w := p.src[start:p.pos]; w {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected token %q at offset %d", w, start)
	}
}
