package telemetry

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// File name layout shared by the local directory, object store and SSH sources.
const (
	DataFilePrefix   = "recent_data_device_"
	BoundsFilePrefix = "freq_bounds_device_"
	FileExt          = ".csv"

	// DataFileGlob matches every sample file in a directory.
	DataFileGlob = DataFilePrefix + "*" + FileExt
)

var dataFileRe = regexp.MustCompile(`_device_(\d+)\.csv$`)

// DataFileName returns the sample file name for a device.
func DataFileName(id DeviceID) string {
	return fmt.Sprintf("%s%d%s", DataFilePrefix, id, FileExt)
}

// BoundsFileName returns the bounds file name for a device.
func BoundsFileName(id DeviceID) string {
	return fmt.Sprintf("%s%d%s", BoundsFilePrefix, id, FileExt)
}

// IsDataFile reports whether a base name (or key) looks like a sample file.
func IsDataFile(name string) bool {
	ok, _ := path.Match(DataFileGlob, path.Base(name))
	return ok
}

// ParseDeviceID extracts N from a name ending in "_device_<N>.csv".
func ParseDeviceID(name string) (DeviceID, error) {
	m := dataFileRe.FindStringSubmatch(path.Base(name))
	if m == nil {
		return 0, fmt.Errorf("%q does not match %s", path.Base(name), DataFileGlob)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q has an invalid device number", path.Base(name))
	}
	return DeviceID(n), nil
}

// SkippedFilesError lists sample-file names whose device number doesn't
// parse. The ids returned alongside it are still valid.
type SkippedFilesError struct {
	Names []string
}

func (e *SkippedFilesError) Error() string {
	return fmt.Sprintf("Ignored %s: no valid device number", strings.Join(e.Names, ", "))
}

// SkippedFiles unwraps a *SkippedFilesError from err.
func SkippedFiles(err error) (*SkippedFilesError, bool) {
	var skipped *SkippedFilesError
	ok := errors.As(err, &skipped)
	return skipped, ok
}

// DeviceIDsFromNames parses every sample-file name into a sorted, de-duplicated
// id list. Names that are not sample files are skipped silently. Sample-file
// names whose number doesn't parse are skipped too and reported in a
// *SkippedFilesError, returned together with the ids that did parse.
func DeviceIDsFromNames(names []string) ([]DeviceID, error) {
	seen := make(map[DeviceID]bool)
	var ids []DeviceID
	var skipped []string
	for _, name := range names {
		if !IsDataFile(name) {
			continue
		}
		id, err := ParseDeviceID(name)
		if err != nil {
			skipped = append(skipped, path.Base(name))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(skipped) > 0 {
		return ids, &SkippedFilesError{Names: skipped}
	}
	return ids, nil
}
