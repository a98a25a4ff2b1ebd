package recognize

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"unveil/internal/dump"
	"unveil/internal/logging"
	"unveil/internal/recogcache"
	"unveil/internal/screenshot"
	"unveil/internal/table"
)

// handIDPattern matches the hand identifier token inside the recognized
// header banner text.
var handIDPattern = regexp.MustCompile(`OM\d+`)

type cropSet struct {
	label string
	img   image.Image
}

func cropImages(crops []cropSet) []image.Image {
	images := make([]image.Image, len(crops))
	for i, crop := range crops {
		images[i] = crop.img
	}
	return images
}

// processOne takes a single screenshot through the full flow: filename
// parse, cache lookup, image decode, layout detection, region cropping, the
// rate-limited recognition call, and terminal outcome recording. Every path
// through it records exactly one result or failure.
func (p *Processor) processOne(ctx, admitCtx context.Context, path string, total int) {
	name := filepath.Base(path)
	identity, ok := screenshot.Parse(name)
	if !ok {
		p.recordFailure(dump.Failure{Filename: name, Reason: "filename does not match capture format"}, total)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		p.recordFailure(dump.Failure{Filename: name, Reason: fmt.Sprintf("stat screenshot: %v", err)}, total)
		return
	}
	modTime := info.ModTime().Unix()

	if p.opts.Cache != nil {
		entry, hit, err := p.opts.Cache.Get(ctx, name, modTime)
		if err != nil {
			p.logger.Warn("cache lookup failed",
				logging.String("filename", name),
				logging.Int64("mod_time", modTime),
				logging.Error(err))
		} else if hit {
			p.recordResult(cachedResult(entry, identity), true, total)
			return
		}
	}

	img, err := loadImage(path)
	if err != nil {
		p.recordFailure(dump.Failure{Filename: name, Reason: fmt.Sprintf("decode screenshot: %v", err)}, total)
		return
	}

	layout := table.DetectLayout(img, p.opts.Tolerance)
	width := img.Bounds().Dx()
	var crops []cropSet
	if header, hasHeader := layout.Header(); hasHeader {
		crops = append(crops, cropSet{label: header.Label, img: header.ScaledTo(width).Crop(img)})
	}
	for _, region := range layout.SeatRegions() {
		crops = append(crops, cropSet{label: region.Label, img: region.ScaledTo(width).Crop(img)})
	}

	names, err := p.callWithRetry(ctx, admitCtx, crops)
	if err != nil {
		p.recordFailure(dump.Failure{Filename: name, Reason: err.Error()}, total)
		return
	}
	if len(names) != len(crops) {
		p.recordFailure(dump.Failure{
			Filename: name,
			Reason:   fmt.Sprintf("recognition returned %d entries for %d crops", len(names), len(crops)),
		}, total)
		return
	}

	handID := ""
	positions := make(map[string]string, len(crops))
	for i, crop := range crops {
		text := strings.TrimSpace(names[i])
		if crop.label == table.HeaderLabel {
			handID = handIDPattern.FindString(text)
			continue
		}
		positions[crop.label] = text
	}
	if handID == "" {
		// The header banner can be unreadable; the table id from the
		// filename names the same hand in the log format.
		handID = fmt.Sprintf("OM%d", identity.TableID)
	}

	result := dump.Result{
		HandID:    handID,
		Filename:  name,
		TableType: layout.Name,
		Identity:  identity,
		Positions: positions,
	}
	if p.opts.Cache != nil {
		entry := recogcache.Entry{
			Filename:  name,
			ModTime:   modTime,
			HandID:    result.HandID,
			TableType: result.TableType,
			Positions: result.Positions,
		}
		if err := p.opts.Cache.Put(ctx, entry); err != nil {
			p.logger.Warn("cache store failed",
				logging.String("filename", name),
				logging.Int64("mod_time", modTime),
				logging.Error(err))
		}
	}
	p.recordResult(result, false, total)
}

func cachedResult(entry recogcache.Entry, identity screenshot.Identity) dump.Result {
	positions := make(map[string]string, len(entry.Positions))
	for label, text := range entry.Positions {
		positions[label] = text
	}
	return dump.Result{
		HandID:    entry.HandID,
		Filename:  entry.Filename,
		TableType: entry.TableType,
		Identity:  identity,
		Positions: positions,
	}
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}
