package handlers

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	helpers "wallmag/internal/utils/helpers"
)

// AdminLogsHandler: просмотр логов за последние дни для редакторов.
// Читает текущий app.log (сегодня) и ротированные lumberjack-файлы app-<timestamp>.log[.gz].
type AdminLogsHandler struct {
	LogDir    string
	Retention int
	now       func() time.Time
}

func NewAdminLogsHandler(logDir string) *AdminLogsHandler {
	return &AdminLogsHandler{LogDir: logDir, Retention: 14, now: time.Now}
}

type logDaysResponse struct {
	Days []string `json:"days"`
}

type logEntriesResponse struct {
	Day        string            `json:"day"`
	Items      []json.RawMessage `json:"items" swaggertype:"array,object"`
	NextCursor int               `json:"nextCursor"`
}

// ListDays godoc
// @Summary Дни, за которые есть логи
// @Tags admin-logs
// @Security CookieAuth
// @Produce json
// @Success 200 {object} logDaysResponse
// @Failure 403 {object} helpers.MessageResponse
// @Router /api/admin/logs/days [get]
func (h *AdminLogsHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	today := h.now().Local()
	days := []string{}
	for i := 0; i < h.Retention; i++ {
		d := today.AddDate(0, 0, -i).Format(time.DateOnly)
		if files, err := h.listFilesForDay(d); err == nil && len(files) > 0 {
			days = append(days, d)
		}
	}
	sort.Strings(days)
	helpers.JSON(w, http.StatusOK, logDaysResponse{Days: days})
}

// GetLogs godoc
// @Summary Логи за день
// @Description JSON-строки лога с фильтром по уровню и подстроке, постранично через cursor.
// @Tags admin-logs
// @Security CookieAuth
// @Produce json
// @Param day query string true "Дата (YYYY-MM-DD)"
// @Param level query string false "CSV уровней: debug,info,warn,error"
// @Param q query string false "Поиск по подстроке"
// @Param limit query int false "Лимит (по умолч. 200, макс. 1000)"
// @Param cursor query int false "Сколько строк пропустить"
// @Success 200 {object} logEntriesResponse
// @Failure 400 {object} helpers.MessageResponse
// @Failure 404 {object} helpers.MessageResponse
// @Router /api/admin/logs [get]
func (h *AdminLogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	day := query.Get("day")
	if !reDay.MatchString(day) {
		helpers.Error(w, http.StatusBadRequest, "Invalid day")
		return
	}

	levels := toUpperSet(parseCSV(query.Get("level")))
	q := strings.ToLower(strings.TrimSpace(query.Get("q")))
	limit := clampAtoi(query.Get("limit"), 200, 1, 1000)
	cursor := clampAtoi(query.Get("cursor"), 0, 0, 10_000_000)

	lineNo, matched := 0, 0
	items := make([]json.RawMessage, 0)
	err := h.forEachDayLine(day, func(raw []byte) bool {
		lineNo++
		if lineNo <= cursor {
			return true
		}
		if q != "" && !strings.Contains(strings.ToLower(string(raw)), q) {
			return true
		}
		var entry struct {
			Level string `json:"level"`
		}
		// консольный формат пропускаем
		if err := json.Unmarshal(raw, &entry); err != nil {
			return true
		}
		if len(levels) > 0 && !levels[strings.ToUpper(entry.Level)] {
			return true
		}
		items = append(items, append(json.RawMessage{}, raw...))
		matched++
		return matched < limit
	})
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Day not found")
		return
	}

	helpers.JSON(w, http.StatusOK, logEntriesResponse{
		Day:        day,
		Items:      items,
		NextCursor: max(lineNo, cursor),
	})
}

var reDay = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (h *AdminLogsHandler) listFilesForDay(day string) ([]string, error) {
	entries, err := os.ReadDir(h.LogDir)
	if err != nil {
		return nil, err
	}
	today := h.now().Local().Format(time.DateOnly)

	var backups []string
	current := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case name == "app.log":
			if day == today {
				current = filepath.Join(h.LogDir, name)
			}
		case strings.HasPrefix(name, "app-"+day) &&
			(strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.gz")):
			backups = append(backups, filepath.Join(h.LogDir, name))
		}
	}

	// бэкапы по времени ротации, текущий файл последним
	sort.Strings(backups)
	if current != "" {
		backups = append(backups, current)
	}
	return backups, nil
}

func (h *AdminLogsHandler) forEachDayLine(day string, handle func([]byte) bool) error {
	files, err := h.listFilesForDay(day)
	if err != nil || len(files) == 0 {
		return os.ErrNotExist
	}

	for _, path := range files {
		if !readLines(path, handle) {
			break
		}
	}
	return nil
}

// readLines возвращает false, если handle попросил остановиться.
func readLines(path string, handle func([]byte) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return true
		}
		defer gz.Close()
		reader = gz
	}

	sc := bufio.NewScanner(reader)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if !handle(sc.Bytes()) {
			return false
		}
	}
	return true
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toUpperSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]bool, len(items))
	for _, p := range items {
		m[strings.ToUpper(p)] = true
	}
	return m
}

func clampAtoi(s string, def, min, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
