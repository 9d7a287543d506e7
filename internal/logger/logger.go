// Package logger owns the process-wide logrus logger. When started it writes
// JSON lines to size-rotated files and archives files past retention.
package logger

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const filePrefix = "dashboard_"

type LoggerService struct {
	Config        map[string]interface{}
	log           *logrus.Logger
	console       bool
	out           *rotatingFile
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	maxFileBytes  int64
	retentionDays int
	folderPath    string
}

func NewLoggerService(config map[string]interface{}) *LoggerService {
	folder, _ := config["folder_path"].(string)
	if folder == "" {
		folder = "./logs"
	}
	console, _ := config["console"].(bool)

	lg := logrus.New()
	lg.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	if lvl, ok := config["level"].(string); ok {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			lg.SetLevel(parsed)
		}
	}
	return &LoggerService{
		Config:        config,
		log:           lg,
		console:       console,
		stopCh:        make(chan struct{}),
		maxFileBytes:  int64(intSetting(config, "max_file_mb")) << 20,
		retentionDays: intSetting(config, "retention_days"),
		folderPath:    folder,
	}
}

// intSetting reads a YAML number that may decode as int or float64.
func intSetting(config map[string]interface{}, key string) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (l *LoggerService) Name() string { return "logger" }

func (l *LoggerService) Start() error {
	if err := os.MkdirAll(l.folderPath, 0o755); err != nil {
		return err
	}
	out := &rotatingFile{dir: l.folderPath, maxBytes: l.maxFileBytes, now: time.Now}
	if err := out.open(); err != nil {
		return err
	}
	l.out = out
	var w io.Writer = out
	if l.console {
		w = io.MultiWriter(os.Stdout, out)
	}
	l.log.SetOutput(w)
	log.SetOutput(w)
	l.log.WithField("file", out.Path()).Info("logger started")

	l.wg.Add(1)
	go l.retentionWorker()
	return nil
}

func (l *LoggerService) Stop() error {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
	if l.out == nil {
		return nil
	}
	l.log.Info("logger stopping")
	l.log.SetOutput(os.Stderr)
	log.SetOutput(os.Stderr)
	return l.out.Close()
}

func (l *LoggerService) retentionWorker() {
	defer l.wg.Done()
	l.archiveOld(time.Now())
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.archiveOld(now)
		}
	}
}

// archiveOld moves log files last written before the retention cutoff into
// one zip and removes them. The file being written is never archived.
func (l *LoggerService) archiveOld(now time.Time) int {
	if l.retentionDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -l.retentionDays)
	current := ""
	if l.out != nil {
		current = l.out.Path()
	}

	entries, err := os.ReadDir(l.folderPath)
	if err != nil {
		return 0
	}
	var stale []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		full := filepath.Join(l.folderPath, e.Name())
		info, err := e.Info()
		if err != nil || full == current || info.ModTime().After(cutoff) {
			continue
		}
		stale = append(stale, full)
	}
	if len(stale) == 0 {
		return 0
	}
	sort.Strings(stale)

	name := filepath.Join(l.folderPath, fmt.Sprintf("logs_%s.zip", now.Format("20060102_150405")))
	archived, err := zipFiles(name, stale)
	if err != nil {
		l.log.WithError(err).Warn("log archive failed")
	}
	return archived
}

func zipFiles(name string, paths []string) (int, error) {
	f, err := os.Create(name)
	if err != nil {
		return 0, err
	}
	zw := zip.NewWriter(f)
	archived := 0
	for _, p := range paths {
		if err := addToZip(zw, p); err != nil {
			continue
		}
		os.Remove(p)
		archived++
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return archived, err
	}
	return archived, f.Close()
}

func addToZip(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// rotatingFile starts a new file once a write would push the current one
// past maxBytes. maxBytes 0 disables rotation.
type rotatingFile struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
	now      func() time.Time
	f        *os.File
	path     string
	size     int64
	seq      int
}

func (r *rotatingFile) open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openLocked()
}

func (r *rotatingFile) openLocked() error {
	r.seq++
	path := filepath.Join(r.dir, fmt.Sprintf("%s%s_%03d.log", filePrefix, r.now().Format("20060102_150405"), r.seq))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.f, r.path, r.size = f, path, info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return 0, os.ErrClosed
	}
	if r.maxBytes > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		r.f.Close()
		if err := r.openLocked(); err != nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func (l *LoggerService) LogAudit(msg string) {
	l.log.WithField("audit", true).Info(msg)
}

// LogAuditFields records an audit event with structured context.
func (l *LoggerService) LogAuditFields(msg string, fields logrus.Fields) {
	l.log.WithFields(fields).WithField("audit", true).Info(msg)
}

func (l *LoggerService) Logger() *logrus.Logger { return l.log }

var GlobalLogger *LoggerService

func SetGlobalLogger(l *LoggerService) {
	GlobalLogger = l
}

// WithFields returns an entry on the global logger, or on the logrus
// standard logger before the service has started.
func WithFields(fields logrus.Fields) *logrus.Entry {
	if GlobalLogger != nil {
		return GlobalLogger.log.WithFields(fields)
	}
	return logrus.WithFields(fields)
}

// LogError records err with the module and function it came from.
func LogError(module, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	WithFields(fields).Error(err.Error())
}
