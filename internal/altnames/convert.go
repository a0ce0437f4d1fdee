package altnames

import (
	"fmt"

	"github.com/longbridgeapp/opencc"
)

// Converter maps Chinese text to its Simplified form.
type Converter interface {
	Convert(text string) (string, error)
}

// OpenCCConverter wraps an OpenCC conversion profile such as "t2s".
type OpenCCConverter struct {
	profile string
	cc      *opencc.OpenCC
}

// NewOpenCCConverter loads the dictionaries for profile.
func NewOpenCCConverter(profile string) (*OpenCCConverter, error) {
	cc, err := opencc.New(profile)
	if err != nil {
		return nil, fmt.Errorf("load opencc profile %s: %w", profile, err)
	}
	return &OpenCCConverter{profile: profile, cc: cc}, nil
}

// Profile returns the loaded conversion profile name.
func (c *OpenCCConverter) Profile() string { return c.profile }

func (c *OpenCCConverter) Convert(text string) (string, error) {
	return c.cc.Convert(text)
}

// Canonicalize converts the chosen candidates and projects them onto output
// rows. Rows without name text are passed through with a nil name.
func Canonicalize(conv Converter, chosen []Candidate) ([]CanonicalName, error) {
	out := make([]CanonicalName, 0, len(chosen))
	for _, c := range chosen {
		row := CanonicalName{GeonameID: c.GeonameID}
		if c.Name != "" {
			converted, err := conv.Convert(c.Name)
			if err != nil {
				return nil, fmt.Errorf("convert name for geoname %d: %w", c.GeonameID, err)
			}
			row.ZhName = &converted
		}
		out = append(out, row)
	}
	return out, nil
}
