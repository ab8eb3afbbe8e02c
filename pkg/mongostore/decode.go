package mongostore

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const dateKeyLayout = "2006-01-02"

// joinEventFromRaw reads a join request document field by field. Older documents were written
// by clients that stored hours as strings and dates as BSON datetimes, so each field is coerced
// on its own and a bad field never drops the record. Hours that cannot be read become NaN and
// dates that cannot be read keep their raw text; aggregation reports both as data quality warnings.
func joinEventFromRaw(raw bson.Raw) model.JoinEvent {
	j := model.JoinEvent{
		ID:           idString(raw.Lookup("_id")),
		EmailAddress: stringValue(raw.Lookup("emailAddress")),
		Category:     stringValue(raw.Lookup("category")),
		Date:         dateString(raw.Lookup("date")),
		Hours:        hoursValue(raw.Lookup("hours")),
		Status:       model.Status(textValue(raw.Lookup("status"))),
		EventID:      stringValue(raw.Lookup("eventId")),
		Revision:     int(intValue(raw.Lookup("revision"))),
	}
	if t, ok := timeValue(raw.Lookup("joinedAt")); ok {
		j.JoinedAt = t
	}
	if t, ok := timeValue(raw.Lookup("decidedAt")); ok {
		j.DecidedAt = &t
	}
	return j
}

func missing(rv bson.RawValue) bool {
	return rv.Type == 0 || rv.Type == bson.TypeNull || rv.Type == bson.TypeUndefined
}

func stringValue(rv bson.RawValue) string {
	s, _ := rv.StringValueOK()
	return s
}

// textValue keeps a non-string value's extended JSON so warnings can show it
func textValue(rv bson.RawValue) string {
	if missing(rv) {
		return ""
	}
	if s, ok := rv.StringValueOK(); ok {
		return s
	}
	return rv.String()
}

func idString(rv bson.RawValue) string {
	if oid, ok := rv.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return textValue(rv)
}

func hoursValue(rv bson.RawValue) float64 {
	switch rv.Type {
	case bson.TypeDouble:
		return rv.Double()
	case bson.TypeInt32:
		return float64(rv.Int32())
	case bson.TypeInt64:
		return float64(rv.Int64())
	case bson.TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.StringValue()), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	if missing(rv) {
		return 0
	}
	return math.NaN()
}

func intValue(rv bson.RawValue) int64 {
	n, _ := rv.AsInt64OK()
	return n
}

func dateString(rv bson.RawValue) string {
	if rv.Type == bson.TypeDateTime {
		return rv.Time().UTC().Format(dateKeyLayout)
	}
	return textValue(rv)
}

func timeValue(rv bson.RawValue) (time.Time, bool) {
	switch rv.Type {
	case bson.TypeDateTime:
		return rv.Time().UTC(), true
	case bson.TypeString:
		t, err := time.Parse(time.RFC3339, rv.StringValue())
		return t, err == nil
	}
	return time.Time{}, false
}
