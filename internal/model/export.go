package model

// Export file names
const (
	ArchiveFileName         = "agent_responses.zip"
	ResponsesFileName       = "agent_responses.csv"
	FutureResponsesFileName = "agent_future_responses.csv"
)

// ArchiveEntry is one CSV file inside an export archive
type ArchiveEntry struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// ExportArchive is the ordered set of CSV files offered for download
type ExportArchive struct {
	FileName string         `json:"fileName"`
	Entries  []ArchiveEntry `json:"entries"`
}

// Entry looks up an entry by file name
func (a *ExportArchive) Entry(name string) (ArchiveEntry, bool) {
	for _, e := range a.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return ArchiveEntry{}, false
}

// ExportDownload is a ready-to-send archive
type ExportDownload struct {
	FileName string
	Data     []byte
}
