package identity

// ContentClass annotates what kind of disc a record describes. Classification
// never blocks identity; it only changes warning text and downstream
// treatment.
type ContentClass string

const (
	ContentMainline    ContentClass = "mainline"
	ContentCheat       ContentClass = "cheat"
	ContentEducational ContentClass = "educational"
	ContentDemo        ContentClass = "demo"
)

// Candidate is a possible identity drawn from the metadata catalog when
// direct resolution fails, ordered by match confidence. Candidates are only
// ever applied by an explicit caller choice.
type Candidate struct {
	Title     string
	Region    string
	Serial    string
	DiscCount int
}

// Record is the resolved identity of one disc image file. Zero values mean
// "unknown"; DiscCount > 1 only for genuine multi-disc titles, TrackNumber
// only for members of a multi-track single disc. The two axes are orthogonal.
type Record struct {
	Path         string
	Title        string
	Region       string
	Serial       string
	DiscNumber   int
	DiscCount    int
	TrackNumber  int
	TrackCount   int
	IsAudioTrack bool
	Content      ContentClass
	Extension    string
	Version      string
	Warning      string

	SerialCandidates []Candidate
}

// IsMultiDisc reports whether the record belongs to a multi-disc title.
func (r Record) IsMultiDisc() bool {
	return r.DiscCount > 1
}

// IsTrackMember reports whether the record is one track of a multi-track
// single disc.
func (r Record) IsTrackMember() bool {
	return r.TrackNumber > 0
}

// WithDisc derives a copy carrying the given disc number and count.
func (r Record) WithDisc(number, count int) Record {
	r.DiscNumber = number
	r.DiscCount = count
	return r
}

// WithSerial derives a copy carrying the given serial.
func (r Record) WithSerial(serialNumber string) Record {
	r.Serial = serialNumber
	return r
}

// WithCandidate derives a copy adopting the candidate's fields. This is the
// explicit acceptance step: candidate lists never apply themselves.
func (r Record) WithCandidate(c Candidate) Record {
	r.Title = c.Title
	r.Region = c.Region
	r.Serial = c.Serial
	if c.DiscCount > r.DiscCount {
		r.DiscCount = c.DiscCount
	}
	r.Warning = ""
	r.SerialCandidates = nil
	return r
}

// CachedIdentity is the subset of identity fields the external cache
// collaborator stores per file path.
type CachedIdentity struct {
	Title      string
	Region     string
	Serial     string
	Version    string
	DiscNumber int
	DiscCount  int
}
