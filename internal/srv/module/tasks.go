package module

import (
	"image"
	"strings"

	"github.com/neoblast-cz/inkframe/internal/srv/canvas"
)

// TasksProvider renders a checklist from its settings. When the habits
// module is configured, its entries are appended below the tasks, which is
// the one cross-module integration the renderer supports.
type TasksProvider struct{}

func NewTasksProvider() *TasksProvider {
	return &TasksProvider{}
}

func (p *TasksProvider) Name() string {
	return "tasks"
}

func (p *TasksProvider) DisplayName() string {
	return "Tasks"
}

func (p *TasksProvider) Description() string {
	return "Task checklist, with your habits below when configured"
}

func (p *TasksProvider) DefaultSettings() Settings {
	return Settings{
		"title": "Tasks",
		"items": "",
	}
}

func (p *TasksProvider) Render(width, height int, settings Settings, rctx RenderContext) (image.Image, error) {
	title := settings["title"]
	if title == "" {
		title = "Tasks"
	}

	img := canvas.New(width, height)
	face := canvas.MessageFace()

	y := 40
	lineHeight := 28

	canvas.AddLabelFace(img, 20, y, title, face)
	y += lineHeight + lineHeight/2

	items := splitItems(settings["items"])
	if len(items) == 0 {
		canvas.AddLabelFace(img, 40, y, "Nothing to do", face)
		y += lineHeight
	}
	for _, item := range items {
		if y > height-lineHeight {
			break
		}
		canvas.AddLabelFace(img, 40, y, "[ ] "+item, face)
		y += lineHeight
	}

	habits := splitItems(rctx.HabitsSettings["items"])
	if len(habits) > 0 && y <= height-2*lineHeight {
		y += lineHeight / 2
		canvas.AddLabelFace(img, 20, y, "Habits", face)
		y += lineHeight + lineHeight/2
		for _, habit := range habits {
			if y > height-lineHeight {
				break
			}
			canvas.AddLabelFace(img, 40, y, "* "+habit, face)
			y += lineHeight
		}
	}

	return img, nil
}

func splitItems(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
