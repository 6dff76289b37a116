package publish

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

// ---------------------------------------------------------------------------
// Publisher
// Posts finished video parts in order, retrying each upload with backoff,
// spacing posts out so the feed is not flooded, and releasing every part
// file exactly once whether or not its upload succeeded.
// ---------------------------------------------------------------------------

const (
	maxUploadAttempts = 3
	initialBackoff    = 2 * time.Second
)

const captionTemplate = "Date Update! 💘 Will %s and %s find love? Our hosts %s and %s get all the details. #AIRadio #DatingShow #AI"

// Uploader pushes one video file with a caption to the platform.
type Uploader interface {
	Upload(ctx context.Context, videoPath, caption string) error
}

// PartReleaser frees the disk space of a posted (or abandoned) part.
type PartReleaser interface {
	ReleasePart(path string)
}

type Publisher struct {
	uploader Uploader
	releaser PartReleaser
	interval time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewPublisher builds a publisher. A nil uploader means the platform is not
// configured: parts are released without posting.
func NewPublisher(uploader Uploader, releaser PartReleaser, postingInterval time.Duration) *Publisher {
	return &Publisher{
		uploader: uploader,
		releaser: releaser,
		interval: postingInterval,
		sleep:    time.Sleep,
	}
}

// PublishAll posts every part in order. A part that exhausts its upload
// attempts is logged and abandoned; later parts still post. Every part is
// released exactly once regardless of outcome. Returns the number of parts
// successfully posted.
func (p *Publisher) PublishAll(ctx context.Context, episodeID string, parts []models.VideoPart, hosts, guests []models.Character) int {
	if len(parts) == 0 {
		log.Printf("[Publish] [%s] No parts to publish", episodeID)
		return 0
	}

	if p.uploader == nil {
		log.Printf("[Publish] [%s] Platform not configured, releasing %d parts without posting", episodeID, len(parts))
		for _, part := range parts {
			p.releaser.ReleasePart(part.Path)
		}
		return 0
	}

	posted := 0
	for i, part := range parts {
		caption := buildCaption(hosts, guests, i+1, len(parts))

		if err := p.uploadWithRetry(ctx, part.Path, caption); err != nil {
			log.Printf("[Publish] [%s] FAILED to post part %d/%d: %v", episodeID, i+1, len(parts), err)
		} else {
			log.Printf("[Publish] [%s] Posted part %d/%d", episodeID, i+1, len(parts))
			posted++
		}

		p.releaser.ReleasePart(part.Path)

		if i < len(parts)-1 {
			log.Printf("[Publish] [%s] Waiting %s before next post", episodeID, p.interval)
			p.sleep(p.interval)
		}
	}

	log.Printf("[Publish] [%s] Publishing done: %d/%d parts posted", episodeID, posted, len(parts))
	return posted
}

// uploadWithRetry attempts one upload up to maxUploadAttempts times with
// doubling backoff (2s, 4s) between attempts.
func (p *Publisher) uploadWithRetry(ctx context.Context, videoPath, caption string) error {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= maxUploadAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = p.uploader.Upload(ctx, videoPath, caption)
		if lastErr == nil {
			return nil
		}

		if attempt < maxUploadAttempts {
			log.Printf("[Publish] Upload attempt %d/%d failed, retrying in %s: %v", attempt, maxUploadAttempts, backoff, lastErr)
			p.sleep(backoff)
			backoff *= 2
		}
	}

	return fmt.Errorf("upload failed after %d attempts: %w", maxUploadAttempts, lastErr)
}

// buildCaption fills the caption template with sorted names so the wording
// is stable across parts, then appends the part counter. In multi-part
// episodes the first and last captions get a short teaser so viewers can tell
// where the story starts and ends.
func buildCaption(hosts, guests []models.Character, partNum, totalParts int) string {
	hostNames := sortedNames(hosts)
	guestNames := sortedNames(guests)

	for len(hostNames) < 2 {
		hostNames = append(hostNames, "the host")
	}
	for len(guestNames) < 2 {
		guestNames = append(guestNames, "our guest")
	}

	caption := fmt.Sprintf(captionTemplate, guestNames[0], guestNames[1], hostNames[0], hostNames[1])

	suffix := fmt.Sprintf("Part %d/%d", partNum, totalParts)
	if totalParts > 1 {
		switch partNum {
		case 1:
			suffix += " - the debrief begins! 👀"
		case totalParts:
			suffix += " - the final verdict! 💘"
		}
	}
	return caption + "\n\n" + suffix
}

func sortedNames(chars []models.Character) []string {
	names := make([]string, len(chars))
	for i, c := range chars {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}
