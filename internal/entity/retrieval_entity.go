package entity

// RetrievalPartition selects a logical subdivision of the knowledge index.
type RetrievalPartition string

const (
	PartitionQA       RetrievalPartition = "QA"
	PartitionDocument RetrievalPartition = "DOCUMENT"
)

// RetrievalEntity is a tagged variant: a QA entity carries Question/Answer,
// a DOCUMENT entity carries Content (+ optional FileName). The Kind is
// resolved once at ingestion from the gateway; downstream code switches on
// it instead of sniffing which fields happen to be set.
type RetrievalEntity struct {
	Kind     RetrievalPartition
	Question string
	Answer   string
	Content  string
	Source   string
	FileName string
}

// DisplayName is the attribution label shown to the end user: the file name
// for documents, the question for QA pairs.
func (e RetrievalEntity) DisplayName() string {
	if e.FileName != "" {
		return e.FileName
	}
	if e.Question != "" {
		return e.Question
	}
	return "Unknown document"
}
