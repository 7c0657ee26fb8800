package wire

// ValidateTLV reports whether data is a well-formed concatenation of
// type/length/value records — `type: u8 ‖ length: CompactSize ‖ value:
// length bytes` — repeated until the cursor consumes data exactly, with no
// trailing bytes, no overrun, and every length read canonical. An empty
// slice is valid and represents zero records. The type byte and value
// contents are never interpreted.
func ValidateTLV(data []byte) bool {
	off := 0
	for off < len(data) {
		// type byte
		if off+1 > len(data) {
			return false
		}
		off++

		length, err := ReadCompactSize(data, &off)
		if err != nil {
			return false
		}
		if length > uint64(len(data)-off) {
			return false
		}
		off += int(length)
	}
	return off == len(data)
}

// TLVRecord is a single decoded (type, value) pair, used by diagnostic
// tooling (segop-cli tlv-dump) that wants to inspect a validated payload
// without interpreting it at consensus.
type TLVRecord struct {
	Type  byte
	Value []byte
}

// SplitTLV decodes data into its TLVRecord sequence. The caller must have
// already confirmed ValidateTLV(data); SplitTLV returns an error if it
// has not, rather than silently returning a partial record set.
func SplitTLV(data []byte) ([]TLVRecord, error) {
	if !ValidateTLV(data) {
		return nil, ErrNonCanonical
	}
	var records []TLVRecord
	off := 0
	for off < len(data) {
		typ := data[off]
		off++
		length, err := ReadCompactSize(data, &off)
		if err != nil {
			return nil, err
		}
		value := append([]byte(nil), data[off:off+int(length)]...)
		off += int(length)
		records = append(records, TLVRecord{Type: typ, Value: value})
	}
	return records, nil
}
