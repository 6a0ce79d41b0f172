package curriculum

// Policy holds the academic policy constants. It is filled from
// configuration by the caller.
type Policy struct {
	StandardSemesters  int
	CostPerCredit      int64
	GraduationFallback []string

	GeneralCategories     []string
	FoundationCategories  []string
	SpecializedCategories []string
}

// Bucket is a recommendation group.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketGeneral
	BucketFoundation
	BucketSpecialized
)

// String returns the bucket name.
func (b Bucket) String() string {
	switch b {
	case BucketGeneral:
		return "general"
	case BucketFoundation:
		return "foundation"
	case BucketSpecialized:
		return "specialized"
	default:
		return "none"
	}
}

// BucketOf maps a category to its bucket. Unknown categories map to
// BucketNone and are never recommended.
func (p Policy) BucketOf(category string) Bucket {
	switch {
	case contains(p.GeneralCategories, category):
		return BucketGeneral
	case contains(p.FoundationCategories, category):
		return BucketFoundation
	case contains(p.SpecializedCategories, category):
		return BucketSpecialized
	default:
		return BucketNone
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
