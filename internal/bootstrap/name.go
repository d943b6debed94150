package bootstrap

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// StampLayout is the wall clock format embedded in working collection names
// before separators are made safe.
const StampLayout = "01/02/2006 15:04:05"

// ErrAmbiguousName means a prefixed collection exists whose serial cannot be
// read, so the next serial cannot be chosen safely.
var ErrAmbiguousName = errors.New("ambiguous working collection name")

var (
	stampReplacer = strings.NewReplacer("/", "-", ":", "-", ".", "-", " ", "_")
	suffixPattern = regexp.MustCompile(`^(\d{2}-\d{2}-\d{4}_\d{2}-\d{2}-\d{2})_(\d+)$`)
)

// Name is a working collection name: prefix_stamp_serial.
type Name struct {
	Prefix string
	Stamp  string
	Serial int
}

// NewName builds the name for serial at time t.
func NewName(prefix string, t time.Time, serial int) Name {
	return Name{Prefix: prefix, Stamp: NormalizeStamp(t.Format(StampLayout)), Serial: serial}
}

// NormalizeStamp replaces characters that are unsafe in collection names.
func NormalizeStamp(s string) string {
	return stampReplacer.Replace(s)
}

func (n Name) String() string {
	return n.Prefix + "_" + n.Stamp + "_" + strconv.Itoa(n.Serial)
}

// ParseName splits a collection name generated by NewName.
func ParseName(prefix, name string) (Name, error) {
	rest, ok := strings.CutPrefix(name, prefix+"_")
	if !ok {
		return Name{}, fmt.Errorf("%w: %q lacks prefix %q", ErrAmbiguousName, name, prefix)
	}
	m := suffixPattern.FindStringSubmatch(rest)
	if m == nil {
		return Name{}, fmt.Errorf("%w: %q", ErrAmbiguousName, name)
	}
	serial, err := strconv.Atoi(m[2])
	if err != nil {
		return Name{}, fmt.Errorf("%w: %q: %v", ErrAmbiguousName, name, err)
	}
	return Name{Prefix: prefix, Stamp: m[1], Serial: serial}, nil
}

// NextSerial returns one more than the highest serial among names, skipping
// the names in except. An unreadable name is fatal.
func NextSerial(prefix string, names []string, except ...string) (int, error) {
	highest := 0
	for _, name := range names {
		if contains(except, name) {
			continue
		}
		n, err := ParseName(prefix, name)
		if err != nil {
			return 0, err
		}
		if n.Serial > highest {
			highest = n.Serial
		}
	}
	return highest + 1, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
