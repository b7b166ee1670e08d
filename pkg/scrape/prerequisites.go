package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type Kind string

const (
	KindNone Kind = ""
	KindAll  Kind = "all"
	KindAny  Kind = "any"
)

// Node is either a Leaf (a single course) or an *Expr.
type Node interface {
	isNode()
}

// Leaf is a required course id.
type Leaf string

// Expr combines its courses with Kind. An Expr with no kind and no courses
// states no requirement.
type Expr struct {
	Kind    Kind
	Courses []Node
}

func (Leaf) isNode()  {}
func (*Expr) isNode() {}

func (e *Expr) IsEmpty() bool {
	return e.Kind == KindNone && len(e.Courses) == 0
}

func (e *Expr) MarshalJSON() ([]byte, error) {
	if e.IsEmpty() {
		return []byte("{}"), nil
	}
	courses := e.Courses
	if courses == nil {
		courses = []Node{}
	}
	return json.Marshal(struct {
		Kind    Kind   `json:"kind"`
		Courses []Node `json:"courses"`
	}{e.Kind, courses})
}

// Tree is the prerequisite expression of a course. Parallel lists courses
// that must be taken alongside the course rather than before it.
type Tree struct {
	Expr
	Parallel *Expr
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     Kind   `json:"kind,omitempty"`
		Courses  []Node `json:"courses,omitempty"`
		Parallel *Expr  `json:"parallel,omitempty"`
	}{t.Kind, t.Courses, t.Parallel})
}

// BuildPrerequisites converts a prerequisites table into a Tree. It returns
// nil when the table has no data or states no requirement at all.
func BuildPrerequisites(table *goquery.Selection) *Tree {
	if table.Length() == 0 {
		return nil
	}
	node := table.Nodes[0]
	if strings.TrimSpace(nodeText(node)) == noDataMarker {
		return nil
	}

	tree := &Tree{}
	b := treeBuilder{tree}
	b.build(node, &tree.Expr)
	if tree.IsEmpty() && tree.Parallel == nil {
		return nil
	}
	return tree
}

type treeBuilder struct {
	root *Tree
}

// build fills target from the rows of table, descending into nested tables.
func (b treeBuilder) build(table *html.Node, target *Expr) {
	top := target
	top.Kind = KindAll

	for _, row := range directRows(table) {
		sub := findElement(row, "table")
		text := strings.TrimSpace(nodeText(row))

		switch {
		case sub != nil && countElements(sub, "tr") > 1:
			if strings.TrimSpace(nodeText(sub)) == noDataMarker {
				continue
			}
			child := &Expr{}
			b.build(sub, child)
			target.Courses = append(target.Courses, child)
		case text == orMarker:
			target.Kind = KindAny
		case text == andMarker:
			continue
		case text == parallelMarker:
			// Parallel courses hang off the root, never under the main tree
			b.root.Parallel = &Expr{Kind: KindAll, Courses: []Node{}}
			target = b.root.Parallel
		default:
			cellOf := row
			if sub != nil {
				cellOf = sub
			}
			if td := findElement(cellOf, "td"); td != nil {
				if course := stripSeparators(nodeText(td)); course != "" {
					target.Courses = append(target.Courses, Leaf(course))
				}
			}
		}
	}

	if len(top.Courses) == 0 {
		top.Kind = KindNone
		top.Courses = nil
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func countElements(n *html.Node, tag string) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			count++
		}
		count += countElements(c, tag)
	}
	return count
}

type PrerequisiteQuery struct {
	Course   string
	Group    string
	Year     int
	Semester string // "a" or "b"
}

func (q PrerequisiteQuery) String() string {
	return fmt.Sprintf("prerequisites-%s%s-%d%s", q.Course, q.Group, q.Year, q.Semester)
}

// GetPrerequisites fetches the prerequisites page of a course group and
// builds its tree from the last data table on the page.
func GetPrerequisites(ctx context.Context, f Fetcher, q PrerequisiteQuery) (*Tree, error) {
	sem, err := SemesterNumber(q.Semester)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("kurs", q.Course)
	query.Set("kv", q.Group)
	query.Set("sem", fmt.Sprintf("%d%s", q.Year, sem))

	doc, err := fetchDocument(ctx, f, Request{
		Method: "GET",
		Url:    BaseUrl + "tal/kr/Drishot_L.aspx?" + query.Encode(),
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Mobile Safari/537.36",
		},
		CacheCategory: "prerequisites",
		CacheKey:      q.String(),
	})
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.tableblds").Last()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no prerequisites table", ErrUnexpectedPage)
	}
	return BuildPrerequisites(table), nil
}

// CollectPrerequisites fetches the trees of the queried courses in order.
// The first failure aborts the run; it is reported under the failing
// query's key. Courses without prerequisites are left out of the result.
func CollectPrerequisites(ctx context.Context, f Fetcher, queries []PrerequisiteQuery, reporter Reporter) (map[string]*Tree, error) {
	reporter = reporterOrNop(reporter)

	trees := make(map[string]*Tree)
	for i, q := range queries {
		unit := q.String()
		reporter.UnitStarted(unit, i+1, len(queries))

		tree, err := GetPrerequisites(ctx, f, q)
		if err != nil {
			reporter.UnitFailed(unit, err)
			return nil, &UnitError{unit, err}
		}
		if tree != nil {
			trees[q.Course] = tree
		}
		reporter.UnitDone(unit)
	}
	return trees, nil
}
