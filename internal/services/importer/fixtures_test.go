// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/autobrr/curator/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const mb = 1024 * 1024

const albumFolder = "Bjork-Homogenic-CD-FLAC-1997-GRP"

func testProfile() *models.QualityProfile {
	return &models.QualityProfile{
		ID:             3,
		Name:           "Lossless",
		UpgradeAllowed: true,
		Cutoff:         models.QualityFLAC.ID,
		Items: []models.QualityProfileItem{
			{Quality: models.QualityMP3, Allowed: true},
			{Quality: models.QualityFLAC, Allowed: true},
		},
		Languages: []models.LanguageProfileItem{{Language: models.LanguageEnglish, Allowed: true}},
	}
}

func testItem() *models.MediaItem {
	return &models.MediaItem{
		ID:          5,
		Title:       "Homogenic",
		ParentTitle: "Bjork",
		Year:        1997,
		Monitored:   true,
		ProfileID:   3,
		Profile:     testProfile(),
		Path:        "/library/Bjork/Homogenic",
		RootFolder:  "/library",
		Units: []models.MediaUnit{
			{ID: 50, ItemID: 5, Number: 1, Title: "Hunter", Monitored: true},
			{ID: 51, ItemID: 5, Number: 2, Title: "Joga", Monitored: true},
			{ID: 52, ItemID: 5, Number: 3, Title: "Unravel", Monitored: true},
		},
	}
}

func track(n int, title string, q models.Quality) *models.ParsedInfo {
	return &models.ParsedInfo{
		ReleaseTitle: title,
		ItemTitle:    title,
		UnitNumbers:  []int{n},
		Quality:      models.NewQualityModel(q),
		Language:     models.LanguageEnglish,
	}
}

// fakeParser answers from fixed tables keyed by file or folder name.
type fakeParser struct {
	parsed map[string]*models.ParsedInfo
	hinted map[string]*models.ParsedInfo
}

func newAlbumParser() *fakeParser {
	return &fakeParser{parsed: map[string]*models.ParsedInfo{
		albumFolder: {
			ReleaseTitle: albumFolder,
			ItemTitle:    "Homogenic",
			ParentTitle:  "Bjork",
			Year:         1997,
			Quality:      models.NewQualityModel(models.QualityFLAC),
			Language:     models.LanguageEnglish,
			ReleaseGroup: "GRP",
		},
		"01 - Hunter.flac":  track(1, "Hunter", models.QualityFLAC),
		"02 - Joga.flac":    track(2, "Joga", models.QualityFLAC),
		"03 - Unravel.flac": track(3, "Unravel", models.QualityFLAC),
		"01 - Hunter.mp3":   track(1, "Hunter", models.QualityMP3),
	}}
}

func (p *fakeParser) ParseReleaseTitle(title string) *models.ParsedInfo {
	return p.parsed[title]
}

func (p *fakeParser) ParseReleaseTitleWithHints(title string, _ *models.MediaItem, _ []models.MediaUnit) *models.ParsedInfo {
	return p.hinted[title]
}

type fakeDisk struct {
	available int64
	known     bool
	err       error
	written   time.Time
	writeErr  error
}

func (d *fakeDisk) AvailableSpace(string) (int64, bool, error) {
	return d.available, d.known, d.err
}

func (d *fakeDisk) LastWriteTime(string) (time.Time, error) {
	return d.written, d.writeErr
}

func plentyOfSpace() *fakeDisk {
	return &fakeDisk{available: 1 << 40, known: true}
}

type placeCall struct {
	path     string
	copyOnly bool
}

// fakePlacer records placements and replaces the files sharing a unit.
type fakePlacer struct {
	mu    sync.Mutex
	err   error
	calls []placeCall
}

func (p *fakePlacer) Place(_ context.Context, file *models.LocalFile, record *models.MediaFile, copyOnly bool) ([]models.MediaFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, placeCall{path: file.Path, copyOnly: copyOnly})
	if p.err != nil {
		return nil, p.err
	}
	name := filepath.Base(file.Path)
	record.Path = filepath.Join(file.Item.Path, name)
	record.RelativePath = name
	return file.Item.FilesForUnits(file.Units), nil
}

type fakeHistory struct {
	mu     sync.Mutex
	grabs  map[string]*models.HistoryRecord
	units  map[int][]models.HistoryRecord
	added  []models.HistoryRecord
	addErr error
}

func (h *fakeHistory) FindGrabByDownloadID(_ context.Context, downloadID string) (*models.HistoryRecord, error) {
	return h.grabs[downloadID], nil
}

func (h *fakeHistory) ByUnit(_ context.Context, unitID int) ([]models.HistoryRecord, error) {
	return h.units[unitID], nil
}

func (h *fakeHistory) Add(_ context.Context, r models.HistoryRecord) (models.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.addErr != nil {
		return models.HistoryRecord{}, h.addErr
	}
	r.ID = len(h.added) + 1
	h.added = append(h.added, r)
	return r, nil
}

type fakeFiles struct {
	mu      sync.Mutex
	files   []models.MediaFile
	deleted []int
	addErr  error
}

func (s *fakeFiles) Add(_ context.Context, f models.MediaFile) (models.MediaFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return models.MediaFile{}, s.addErr
	}
	f.ID = 1000 + len(s.files)
	s.files = append(s.files, f)
	return f, nil
}

func (s *fakeFiles) DeleteByRelativePath(_ context.Context, itemID int, rel string) ([]models.MediaFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed, kept []models.MediaFile
	for _, f := range s.files {
		if f.ItemID == itemID && f.RelativePath == rel {
			removed = append(removed, f)
		} else {
			kept = append(kept, f)
		}
	}
	s.files = kept
	return removed, nil
}

func (s *fakeFiles) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeFiles) snapshot() []models.MediaFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MediaFile(nil), s.files...)
}

type harness struct {
	parser   *fakeParser
	disk     *fakeDisk
	placer   *fakePlacer
	history  *fakeHistory
	files    *fakeFiles
	settings Settings
}

func newHarness() *harness {
	settings := DefaultSettings()
	return &harness{
		parser:   newAlbumParser(),
		disk:     plentyOfSpace(),
		placer:   &fakePlacer{},
		history:  &fakeHistory{},
		files:    &fakeFiles{},
		settings: settings,
	}
}

func (h *harness) service(opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithSettings(func() Settings { return h.settings }),
	}
	return NewService(h.parser, h.disk, h.placer, h.history, h.files, append(base, opts...)...)
}

func scanned(name string, size int64) ScannedFile {
	return ScannedFile{Path: filepath.Join("/downloads", albumFolder, name), Size: size, ModTime: testNow.Add(-time.Hour)}
}
