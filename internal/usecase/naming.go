package usecase

import "time"

const timestampLayout = "20060102150405"

// UploadName derives the remote object name as {prefix}_{tag}{base}. The
// underscore is always present, even without a prefix, so names stay
// compatible with objects uploaded by earlier releases.
func UploadName(prefix, tag *string, base string) string {
	return deref(prefix) + "_" + deref(tag) + base
}

// TimestampTag formats t as YYYYMMDDHHMMSS followed by an underscore.
func TimestampTag(t time.Time) string {
	return t.Format(timestampLayout) + "_"
}

// namePrefix is the part of every object name a given prefix produces.
func namePrefix(prefix *string) string {
	return deref(prefix) + "_"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
