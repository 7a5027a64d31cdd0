package health

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SimpleChecker оборачивает функцию проверки.
type SimpleChecker struct {
	name    string
	checkFn func() error
}

// NewSimpleChecker создаёт проверку: ошибка checkFn означает unhealthy.
func NewSimpleChecker(name string, checkFn func() error) *SimpleChecker {
	return &SimpleChecker{name: name, checkFn: checkFn}
}

// Check выполняет проверку и замеряет её длительность.
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.checkFn()
	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// FileChecker следит за файлами заказов.
//
// Каталог файла обязан существовать, иначе сохранение невозможно (unhealthy).
// Отсутствующий файл означает лишь, что заказы ещё не сохранялись (degraded).
type FileChecker struct {
	name  string
	paths []string
}

// NewFileChecker создаёт проверку для набора путей.
func NewFileChecker(name string, paths ...string) *FileChecker {
	return &FileChecker{name: name, paths: paths}
}

// Check проверяет каждый путь.
func (c *FileChecker) Check() Check {
	start := time.Now()
	check := Check{Name: c.name, Status: StatusHealthy}

	var missing []string
	for _, path := range c.paths {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			check.Status = StatusUnhealthy
			check.Message = fmt.Sprintf("directory %s is not available", dir)
			check.DurationMs = time.Since(start).Milliseconds()
			return check
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		check.Status = StatusDegraded
		check.Message = "not saved yet: " + strings.Join(missing, ", ")
	}
	check.DurationMs = time.Since(start).Milliseconds()
	return check
}
