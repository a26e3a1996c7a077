package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timeboard/internal/filex"
	"github.com/dmitrijs2005/timeboard/internal/netx"
	gs "github.com/dmitrijs2005/timeboard/internal/server/grpc"
)

// envelopeReserve is the part of a request kept for text fields and framing.
const envelopeReserve = 64 << 10

// event is the CLI's view of an event returned by the server.
type event struct {
	ID          int64
	Title       string
	Description string
	Date        string
	Color       string
	Category    string
	Images      []string
}

func eventFromValue(v *structpb.Struct) event {
	f := v.GetFields()
	e := event{
		ID:          int64(f["id"].GetNumberValue()),
		Title:       f["title"].GetStringValue(),
		Description: f["description"].GetStringValue(),
		Date:        f["date"].GetStringValue(),
		Color:       f["color"].GetStringValue(),
		Category:    f["category"].GetStringValue(),
	}
	for _, img := range f["images"].GetListValue().GetValues() {
		e.Images = append(e.Images, img.GetStringValue())
	}
	return e
}

func (e event) line() string {
	s := fmt.Sprintf("[%d] %s  %s (%s)", e.ID, e.Date, e.Title, e.Category)
	if n := len(e.Images); n > 0 {
		s += fmt.Sprintf("  %d image(s)", n)
	}
	return s
}

func (a *App) listEvents(ctx context.Context, category string) ([]event, error) {
	out, err := a.call(ctx, gs.MethodListEvents, map[string]any{"category": category})
	if err != nil {
		return nil, err
	}
	var events []event
	for _, v := range out.GetFields()["events"].GetListValue().GetValues() {
		events = append(events, eventFromValue(v.GetStructValue()))
	}
	return events, nil
}

func (a *App) List(ctx context.Context, category string) error {
	events, err := a.listEvents(ctx, category)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events found.")
		return nil
	}
	for _, e := range events {
		fmt.Fprintln(a.out, e.line())
	}
	return nil
}

func (a *App) Categories(ctx context.Context) error {
	out, err := a.call(ctx, gs.MethodListCategories, nil)
	if err != nil {
		return err
	}
	for _, v := range out.GetFields()["categories"].GetListValue().GetValues() {
		c := v.GetStructValue().GetFields()
		fmt.Fprintf(a.out, "%-10s %s\n", c["name"].GetStringValue(), c["color"].GetStringValue())
	}
	return nil
}

func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	date, err := GetTextOrDefault(a.reader, "Date (YYYY-MM-DD)", time.Now().Format("2006-01-02"), a.out)
	if err != nil {
		return err
	}
	color, err := GetTextOrDefault(a.reader, "Color (#RRGGBB)", "#000000", a.out)
	if err != nil {
		return err
	}
	category, err := GetTextOrDefault(a.reader, "Category", "Other", a.out)
	if err != nil {
		return err
	}
	uploads, err := a.readAttachments(ctx, len(title)+len(description))
	if err != nil {
		return err
	}

	out, err := a.call(ctx, gs.MethodCreateEvent, map[string]any{
		"title":       title,
		"description": description,
		"date":        date,
		"color":       color,
		"category":    category,
		"uploads":     uploads,
	})
	if err != nil {
		return err
	}

	e := eventFromValue(out.GetFields()["event"].GetStructValue())
	fmt.Fprintln(a.out, "Added:", e.line())
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	current, err := a.find(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		fmt.Fprintln(a.out, "No event with id", id)
		return nil
	}

	title, err := GetTextOrDefault(a.reader, "Title", current.Title, a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	if description == "" {
		description = current.Description
	}
	date, err := GetTextOrDefault(a.reader, "Date (YYYY-MM-DD)", current.Date, a.out)
	if err != nil {
		return err
	}
	color, err := GetTextOrDefault(a.reader, "Color (#RRGGBB)", current.Color, a.out)
	if err != nil {
		return err
	}
	category, err := GetTextOrDefault(a.reader, "Category", current.Category, a.out)
	if err != nil {
		return err
	}

	images := current.Images
	if len(images) > 0 {
		drop, err := GetList(a.reader, fmt.Sprintf("Image numbers to remove, 1-%d (comma separated)", len(images)), a.out)
		if err != nil {
			return err
		}
		images = removeIndexes(images, drop)
	}

	kept := make([]any, len(images))
	used := len(title) + len(description)
	for i, img := range images {
		kept[i] = img
		used += len(img)
	}

	uploads, err := a.readAttachments(ctx, used)
	if err != nil {
		return err
	}

	out, err := a.call(ctx, gs.MethodUpdateEvent, map[string]any{
		"id":          current.ID,
		"title":       title,
		"description": description,
		"date":        date,
		"color":       color,
		"category":    category,
		"images":      kept,
		"uploads":     uploads,
	})
	if err != nil {
		return err
	}

	if out.GetFields()["updated"].GetBoolValue() {
		fmt.Fprintln(a.out, "Updated event", current.ID)
	} else {
		fmt.Fprintln(a.out, "Event", current.ID, "no longer exists; nothing was saved.")
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	current, err := a.find(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		fmt.Fprintln(a.out, "No event with id", id)
		return nil
	}

	ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete %q?", current.Title), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	out, err := a.call(ctx, gs.MethodDeleteEvent, map[string]any{"id": current.ID})
	if err != nil {
		return err
	}
	if out.GetFields()["deleted"].GetBoolValue() {
		fmt.Fprintln(a.out, "Deleted event", current.ID)
	} else {
		fmt.Fprintln(a.out, "Event", current.ID, "was already gone.")
	}
	return nil
}

// find returns the event with the given id, or nil when there is none.
func (a *App) find(ctx context.Context, id string) (*event, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid id %q", id)
	}

	events, err := a.listEvents(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == n {
			return &events[i], nil
		}
	}
	return nil, nil
}

// readAttachments asks for image paths or URLs and returns them as upload
// objects. used is the request size already taken by other fields; the
// base64 uploads share what is left of MaxMessageSize. An unreadable entry,
// or one that does not fit, is reported and skipped.
func (a *App) readAttachments(ctx context.Context, used int) ([]any, error) {
	refs, err := GetList(a.reader, "Image files or URLs (comma separated, empty for none)", a.out)
	if err != nil {
		return nil, err
	}

	left := a.config.MaxMessageSize - envelopeReserve - used

	uploads := []any{}
	for _, ref := range refs {
		var (
			name string
			data []byte
		)
		limit := int64(left / 4 * 3)
		if limit <= 0 {
			fmt.Fprintf(a.out, "Skipping %s: request size limit of %d bytes reached\n", ref, a.config.MaxMessageSize)
			continue
		}

		if netx.IsURL(ref) {
			name, data, err = netx.Download(ctx, a.http, ref, limit)
		} else {
			var f filex.File
			f, err = filex.ReadLimited(ref, limit)
			name, data = f.Name, f.Data
		}
		if err != nil {
			fmt.Fprintf(a.out, "Skipping %s: %v\n", ref, err)
			continue
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		left -= len(encoded) + len(name)
		uploads = append(uploads, map[string]any{
			"name": name,
			"data": encoded,
		})
	}
	return uploads, nil
}

// removeIndexes drops the 1-based positions listed in drop. Entries that are
// not valid positions are ignored.
func removeIndexes(images []string, drop []string) []string {
	skip := make(map[int]bool, len(drop))
	for _, d := range drop {
		if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
			skip[n-1] = true
		}
	}

	out := make([]string, 0, len(images))
	for i, img := range images {
		if !skip[i] {
			out = append(out, img)
		}
	}
	return out
}
