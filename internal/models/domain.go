package models

import "encoding/json"

// Group представляет группу (band) с общей облачной папкой.
type Group struct {
	ID        string `json:"id"`        // UUID группы
	Name      string `json:"name"`      // название группы
	FolderID  string `json:"folderId"`  // папка группы в облаке
	CreatedBy string `json:"createdBy"` // memberId создателя
	CreatedAt int64  `json:"createdAt"` // unix ms
}

// Member участник группы.
type Member struct {
	ID         string `json:"id"`                   // UUID участника
	GroupID    string `json:"groupId"`              // группа
	Name       string `json:"name"`                 // отображаемое имя
	Role       Role   `json:"role"`                 // leader, member, viewer
	Instrument string `json:"instrument,omitempty"` // инструмент (для UI)
}

// Song песня в репертуаре группы.
type Song struct {
	ID      string `json:"id"`
	GroupID string `json:"groupId"`
	Title   string `json:"title"`
	Artist  string `json:"artist,omitempty"`
	Key     string `json:"key,omitempty"`   // тональность
	Notes   string `json:"notes,omitempty"` // заметки к исполнению
	Tempo   int    `json:"tempo,omitempty"` // BPM
}

// SongFile ноты или другой файл, привязанный к песне.
// Содержимое хранится отдельно как blob, FileChecksum адресует его.
type SongFile struct {
	ID           string `json:"id"`
	SongID       string `json:"songId"`
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	FileChecksum string `json:"fileChecksum"` // sha256 содержимого
	Size         int64  `json:"size"`
}

// Setlist сет-лист концерта или репетиции.
// Items задает порядок элементов (идентификаторы SetlistItem).
type Setlist struct {
	ID      string   `json:"id"`
	GroupID string   `json:"groupId"`
	Name    string   `json:"name"`
	Venue   string   `json:"venue,omitempty"`
	Date    string   `json:"date,omitempty"` // YYYY-MM-DD
	Items   []string `json:"items"`
}

// SetlistItem песня в сет-листе.
type SetlistItem struct {
	ID        string `json:"id"`
	SetlistID string `json:"setlistId"`
	SongID    string `json:"songId"`
	Notes     string `json:"notes,omitempty"`
	Position  int    `json:"position"`
}

// Annotation слой рукописных пометок участника на странице файла.
type Annotation struct {
	ID         string   `json:"id"`
	SongFileID string   `json:"songFileId"`
	MemberID   string   `json:"memberId"`
	LayerID    string   `json:"layerId,omitempty"` // отдельный слой устройства после LAYER_SEPARATE
	Strokes    []Stroke `json:"strokes"`
	Page       int      `json:"page"`
}

// Stroke один штрих аннотации.
type Stroke struct {
	ID     string  `json:"id"`
	Tool   string  `json:"tool"`  // pen, highlighter, eraser
	Color  string  `json:"color"` // #RRGGBB
	Points []Point `json:"points"`
	Width  float64 `json:"width"`
}

// Point точка штриха в координатах страницы.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Equal сравнивает штрихи по содержимому
func (s Stroke) Equal(other Stroke) bool {
	if s.ID != other.ID || s.Tool != other.Tool || s.Color != other.Color || s.Width != other.Width {
		return false
	}
	if len(s.Points) != len(other.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

// DisplayName возвращает имя сущности для журнала по ее payload.
// Для неизвестных payload возвращает пустую строку.
func DisplayName(entityType EntityType, data json.RawMessage) string {
	var probe struct {
		Name     string `json:"name"`
		Title    string `json:"title"`
		FileName string `json:"fileName"`
		SongID   string `json:"songId"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}

	switch entityType {
	case EntitySong:
		return probe.Title
	case EntitySongFile:
		return probe.FileName
	case EntitySetlistItem, EntityAnnotation:
		return ""
	default:
		return probe.Name
	}
}
