package template

import (
	"strings"
	"testing"

	"reviewgate/internal/domain/review"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine("templates")
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func reviewData() map[string]any {
	return map[string]any{
		"Subject":       "⭐ New 4-Star Review from Arjun",
		"CustomerName":  "Arjun",
		"Rating":        4,
		"Stars":         review.Stars(4),
		"ReviewText":    "Publishing went smoothly.",
		"OrderID":       "6fa1f33f-1db4-4f4c-a0ff-6ab63dd1b6cd",
		"AdminPanelURL": "https://example.test/admin",
	}
}

func TestRenderReviewSubmitted(t *testing.T) {
	subject, html, text, err := testEngine(t).Render(review.TypeReviewSubmitted, reviewData())
	if err != nil {
		t.Fatal(err)
	}

	if subject != "⭐ New 4-Star Review from Arjun" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"Arjun", "★★★★☆", "(4/5)", "Publishing went smoothly.", "6fa1f33f"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if !strings.Contains(text, "Arjun") {
		t.Error("plain-text fallback missing customer name")
	}
}

func TestRenderEscapesUserText(t *testing.T) {
	data := reviewData()
	data["CustomerName"] = `<b>Eve</b>`
	data["ReviewText"] = `<script>alert("xss")</script>`

	_, html, _, err := testEngine(t).Render(review.TypeReviewSubmitted, data)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(html, "<script>") {
		t.Error("script tag survived rendering unescaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("user text should appear as escaped literal text")
	}
	if strings.Contains(html, "<b>Eve</b>") {
		t.Error("markup in the customer name survived unescaped")
	}
}

func TestRenderOmitsAbsentOrderID(t *testing.T) {
	data := reviewData()
	data["OrderID"] = ""

	_, html, _, err := testEngine(t).Render(review.TypeReviewSubmitted, data)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "Order ID") {
		t.Error("order block should be omitted when no order is linked")
	}
}

func TestRenderDefaultSubject(t *testing.T) {
	data := reviewData()
	delete(data, "Subject")

	subject, _, _, err := testEngine(t).Render(review.TypeReviewSubmitted, data)
	if err != nil {
		t.Fatal(err)
	}
	if subject != "New Review Submitted" {
		t.Errorf("subject = %q", subject)
	}
}

func TestRenderUnknownType(t *testing.T) {
	if _, _, _, err := testEngine(t).Render("no_such_type", nil); err == nil {
		t.Error("unknown notification type should fail")
	}
}
