package altnames

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag is a tri-state boolean column. GeoNames writes "1" for true and
// leaves the column empty otherwise; "0" is accepted as an explicit false.
type Flag uint8

const (
	FlagAbsent Flag = iota
	FlagFalse
	FlagTrue
)

// True reports whether the flag is explicitly set.
func (f Flag) True() bool { return f == FlagTrue }

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "absent"
	}
}

func parseFlag(value string) (Flag, error) {
	switch strings.TrimSpace(value) {
	case "":
		return FlagAbsent, nil
	case "1":
		return FlagTrue, nil
	case "0":
		return FlagFalse, nil
	default:
		return FlagAbsent, fmt.Errorf("invalid flag %q", value)
	}
}

// AlternateName is the seven-column projection of one raw table row.
// Language and Name are empty when the source column is empty.
type AlternateName struct {
	GeonameID  int64
	Language   string
	Name       string
	Preferred  Flag
	Short      Flag
	Colloquial Flag
	Historic   Flag
}

// CanonicalName is one output row. ZhName is nil when the chosen row had no
// name text.
type CanonicalName struct {
	GeonameID int64   `parquet:"geoname_id"`
	ZhName    *string `parquet:"zh_name,optional"`
}

// Raw table column positions. Column 0 (alternateNameId) and the trailing
// from/to columns are not projected.
const (
	colGeonameID = 1 + iota
	colLanguage
	colName
	colPreferred
	colShort
	colColloquial
	colHistoric

	minColumns = colHistoric + 1
)

// ParseLine projects one tab-separated raw line onto AlternateName.
func ParseLine(line string) (AlternateName, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < minColumns {
		return AlternateName{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(fields))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(fields[colGeonameID]), 10, 64)
	if err != nil {
		return AlternateName{}, fmt.Errorf("geonameid %q: %w", fields[colGeonameID], err)
	}
	rec := AlternateName{
		GeonameID: id,
		Language:  strings.TrimSpace(fields[colLanguage]),
		Name:      fields[colName],
	}
	flags := []struct {
		dst  *Flag
		col  int
		name string
	}{
		{&rec.Preferred, colPreferred, "isPreferredName"},
		{&rec.Short, colShort, "isShortName"},
		{&rec.Colloquial, colColloquial, "isColloquial"},
		{&rec.Historic, colHistoric, "isHistoric"},
	}
	for _, f := range flags {
		v, err := parseFlag(fields[f.col])
		if err != nil {
			return AlternateName{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return rec, nil
}
