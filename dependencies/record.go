package dependencies

import (
	"strings"
	"time"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/common"
)

// Record is one dependency as reported to users.
type Record struct {
	PackageName     string `json:"package_name"`
	ResolvedVersion string `json:"resolved_version"`
	CreatedDate     string `json:"created_date"`
	Uuid            string `json:"uuid"`
	Name            string `json:"name"`
}

func NewRecord(object cloud.MetadataObject) Record {
	return Record{
		PackageName:     StripScheme(object.Spec.DependencyData.PackageName),
		ResolvedVersion: object.Spec.DependencyData.ResolvedVersion,
		CreatedDate:     object.Meta.CreateTime,
		Uuid:            object.Uuid,
		Name:            object.Meta.Name,
	}
}

func NewRecords(objects []cloud.MetadataObject) []Record {
	result := make([]Record, 0, len(objects))
	for _, object := range objects {
		result = append(result, NewRecord(object))
	}
	return result
}

// StripScheme turns "npm://merge" into "merge".
func StripScheme(name string) string {
	if at := strings.LastIndex(name, "://"); at >= 0 {
		return name[at+3:]
	}
	return name
}

func (it Record) Coordinate() string {
	return it.PackageName + "@" + it.ResolvedVersion
}

// FilterSince keeps records created on or after cutoff, in their original
// order. Records with an unreadable creation date are kept, since the
// remote side already filtered them by day.
func FilterSince(records []Record, cutoff time.Time) []Record {
	result := make([]Record, 0, len(records))
	for _, record := range records {
		created, err := ParseDate(record.CreatedDate)
		if err != nil {
			common.Debug("Keeping %s, creation date %q is not understood.", record.Coordinate(), record.CreatedDate)
			result = append(result, record)
			continue
		}
		if !created.Before(cutoff) {
			result = append(result, record)
		}
	}
	return result
}
