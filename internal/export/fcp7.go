package export

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/cutarr/cutarr/internal/models"
)

// clipRef pairs an item with its generated clip ID and owning track index
type clipRef struct {
	item       models.TimelineItem
	id         string
	trackIndex int
}

// ToFCP7XML renders the timeline as a Final Cut Pro 7 (xmeml v5) document,
// the interchange format DaVinci Resolve imports. Media paths are written
// relative to a Media/ directory next to the XML file.
func ToFCP7XML(state *models.TimelineState, projectName string) string {
	totalFrames := state.TotalDuration

	var clips []clipRef
	counter := 1
	for trackIndex, track := range state.Tracks {
		for _, item := range track.Items {
			if item.Type == models.MediaTypeVideo && item.Src != "" {
				clips = append(clips, clipRef{
					item:       item,
					id:         fmt.Sprintf("clipitem-%d", counter),
					trackIndex: trackIndex,
				})
				counter++
			}
		}
	}
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].item.StartTime < clips[j].item.StartTime
	})

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<!DOCTYPE xmeml>\n")
	sb.WriteString("<xmeml version=\"5\">\n")
	sb.WriteString("  <project>\n")
	fmt.Fprintf(&sb, "    <name>%s</name>\n", escapeXML(projectName))
	sb.WriteString("    <children>\n")
	sb.WriteString("      <sequence id=\"sequence-1\">\n")
	fmt.Fprintf(&sb, "        <name>%s</name>\n", escapeXML(projectName))
	fmt.Fprintf(&sb, "        <duration>%d</duration>\n", totalFrames)
	writeRate(&sb, "        ", state.FPS)
	sb.WriteString("        <timecode>\n")
	writeRate(&sb, "          ", state.FPS)
	sb.WriteString("          <string>01:00:00:00</string>\n")
	sb.WriteString("          <frame>0</frame>\n")
	sb.WriteString("          <displayformat>NDF</displayformat>\n")
	sb.WriteString("        </timecode>\n")
	sb.WriteString("        <in>0</in>\n")
	fmt.Fprintf(&sb, "        <out>%d</out>\n", totalFrames)
	sb.WriteString("        <media>\n")
	sb.WriteString("          <video>\n")
	writeVideoTracks(&sb, clips, state.FPS)
	sb.WriteString("          </video>\n")
	sb.WriteString("          <audio>\n")
	sb.WriteString("            <track></track>\n")
	sb.WriteString("          </audio>\n")
	sb.WriteString("        </media>\n")
	sb.WriteString("      </sequence>\n")
	sb.WriteString("    </children>\n")
	sb.WriteString("  </project>\n")
	sb.WriteString("</xmeml>\n")
	return sb.String()
}

func writeVideoTracks(sb *strings.Builder, clips []clipRef, fps int) {
	if len(clips) == 0 {
		sb.WriteString("            <track></track>\n")
		return
	}

	// Group clips back into their tracks, preserving track order
	byTrack := make(map[int][]clipRef)
	var trackOrder []int
	for _, clip := range clips {
		if _, seen := byTrack[clip.trackIndex]; !seen {
			trackOrder = append(trackOrder, clip.trackIndex)
		}
		byTrack[clip.trackIndex] = append(byTrack[clip.trackIndex], clip)
	}
	sort.Ints(trackOrder)

	for _, trackIndex := range trackOrder {
		sb.WriteString("            <track>\n")
		for _, clip := range byTrack[trackIndex] {
			writeClipItem(sb, clip, fps)
		}
		sb.WriteString("            </track>\n")
	}
}

func writeClipItem(sb *strings.Builder, clip clipRef, fps int) {
	item := clip.item

	// Source in/out come from the cut bookkeeping when present, so exported
	// clips reference the surviving source spans rather than frame zero
	sourceIn := int64(math.Round(item.Props.OriginalStartTime * float64(fps)))
	sourceOut := sourceIn + item.Duration
	if item.Props.OriginalEndTime > 0 {
		sourceOut = int64(math.Round(item.Props.OriginalEndTime * float64(fps)))
	}

	filename := MediaFilename(item.Src, item.Name)

	fmt.Fprintf(sb, "              <clipitem id=\"%s\">\n", clip.id)
	fmt.Fprintf(sb, "                <name>%s</name>\n", escapeXML(item.Name))
	fmt.Fprintf(sb, "                <duration>%d</duration>\n", item.Duration)
	writeRate(sb, "                ", fps)
	fmt.Fprintf(sb, "                <start>%d</start>\n", item.StartTime)
	fmt.Fprintf(sb, "                <end>%d</end>\n", item.EndTime())
	fmt.Fprintf(sb, "                <in>%d</in>\n", sourceIn)
	fmt.Fprintf(sb, "                <out>%d</out>\n", sourceOut)
	fmt.Fprintf(sb, "                <file id=\"file-%s\">\n", clip.id)
	fmt.Fprintf(sb, "                  <name>%s</name>\n", escapeXML(filename))
	fmt.Fprintf(sb, "                  <pathurl>%s</pathurl>\n", escapeXML("Media/"+filename))
	sb.WriteString("                </file>\n")
	sb.WriteString("              </clipitem>\n")
}

func writeRate(sb *strings.Builder, indent string, fps int) {
	fmt.Fprintf(sb, "%s<rate>\n", indent)
	fmt.Fprintf(sb, "%s  <timebase>%d</timebase>\n", indent, fps)
	fmt.Fprintf(sb, "%s  <ntsc>FALSE</ntsc>\n", indent)
	fmt.Fprintf(sb, "%s</rate>\n", indent)
}

// MediaFilename derives a stable filename for a media locator, falling back
// to a sanitized item name when the URL has no usable basename
func MediaFilename(src, itemName string) string {
	base := path.Base(src)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "." || base == "/" {
		sanitized := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
				return r
			}
			return '_'
		}, itemName)
		base = sanitized + ".mp4"
	}
	return base
}

// FramesToTimecode renders a frame count as HH:MM:SS:FF
func FramesToTimecode(frames int64, fps int) string {
	totalSeconds := frames / int64(fps)
	remainingFrames := frames % int64(fps)

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, remainingFrames)
}

// escapeXML escapes the five standard XML entities
func escapeXML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(text)
}
