package model

// SubtitleOptions holds the caller's styling overrides. Every field is optional;
// a nil field keeps the default style value.
type SubtitleOptions struct {
	FontName           *string  `json:"fontName,omitempty" binding:"omitempty,subtitle_font"`
	FontSize           *int     `json:"fontSize,omitempty" binding:"omitempty,min=1"`
	PrimaryColour      *string  `json:"primaryColour,omitempty" binding:"omitempty,ass_colour"`
	Outline            *float64 `json:"outline,omitempty" binding:"omitempty,min=0,max=1"`
	OutlineColour      *string  `json:"outlineColour,omitempty" binding:"omitempty,ass_colour"`
	Bold               *bool    `json:"bold,omitempty"`
	Italic             *bool    `json:"italic,omitempty"`
	Underline          *bool    `json:"underline,omitempty"`
	VerticalPosition   *string  `json:"verticalPosition,omitempty" binding:"omitempty,oneof=top center bottom"`
	HorizontalPosition *string  `json:"horizontalPosition,omitempty" binding:"omitempty,oneof=left middle right"`
	FadeInDuration     *float64 `json:"fadeInDuration,omitempty" binding:"omitempty,min=0"`
	FadeOutDuration    *float64 `json:"fadeOutDuration,omitempty" binding:"omitempty,min=0"`
}

// HasCustomization is true when at least one override is set.
func (o *SubtitleOptions) HasCustomization() bool {
	if o == nil {
		return false
	}
	return o.FontName != nil || o.FontSize != nil || o.PrimaryColour != nil ||
		o.Outline != nil || o.OutlineColour != nil || o.Bold != nil ||
		o.Italic != nil || o.Underline != nil || o.VerticalPosition != nil ||
		o.HorizontalPosition != nil || o.FadeInDuration != nil || o.FadeOutDuration != nil
}

// SubtitleStyle is the fully materialized ASS style sent to the processor.
type SubtitleStyle struct {
	FontName        string  `json:"fontName"`
	FontSize        int     `json:"fontSize"`
	PrimaryColour   string  `json:"primaryColour"`
	BackColour      string  `json:"backColour"`
	Bold            bool    `json:"bold"`
	Italic          bool    `json:"italic"`
	Underline       bool    `json:"underline"`
	Outline         float64 `json:"outline"`
	OutlineColour   string  `json:"outlineColour"`
	Shadow          float64 `json:"shadow"`
	ShadowColour    string  `json:"shadowColour"`
	MarginL         int     `json:"marginL"`
	MarginR         int     `json:"marginR"`
	MarginV         int     `json:"marginV"`
	Alignment       int     `json:"alignment"`
	BorderStyle     int     `json:"borderStyle"`
	FadeInDuration  float64 `json:"fadeInDuration,omitempty"`
	FadeOutDuration float64 `json:"fadeOutDuration,omitempty"`
}

func DefaultSubtitleStyle() SubtitleStyle {
	return SubtitleStyle{
		FontName:      "Arial",
		FontSize:      15,
		PrimaryColour: "&H00FFFFFF",
		BackColour:    "&HFF0000FF",
		Outline:       1,
		OutlineColour: "&H00000000",
		Shadow:        1,
		ShadowColour:  "&H808080",
		MarginL:       10,
		MarginR:       10,
		MarginV:       20,
		Alignment:     2,
		BorderStyle:   1,
	}
}

// Resolve overlays the options on the default style.
func (o *SubtitleOptions) Resolve() SubtitleStyle {
	style := DefaultSubtitleStyle()
	if o == nil {
		return style
	}
	if o.FontName != nil {
		style.FontName = *o.FontName
	}
	if o.FontSize != nil {
		style.FontSize = *o.FontSize
	}
	if o.PrimaryColour != nil {
		style.PrimaryColour = *o.PrimaryColour
	}
	if o.Outline != nil {
		style.Outline = *o.Outline
	}
	if o.OutlineColour != nil {
		style.OutlineColour = *o.OutlineColour
	}
	if o.Bold != nil {
		style.Bold = *o.Bold
	}
	if o.Italic != nil {
		style.Italic = *o.Italic
	}
	if o.Underline != nil {
		style.Underline = *o.Underline
	}
	if o.VerticalPosition != nil || o.HorizontalPosition != nil {
		style.Alignment = alignment(deref(o.VerticalPosition, "bottom"), deref(o.HorizontalPosition, "middle"))
	}
	if o.FadeInDuration != nil {
		style.FadeInDuration = *o.FadeInDuration
	}
	if o.FadeOutDuration != nil {
		style.FadeOutDuration = *o.FadeOutDuration
	}
	return style
}

// alignment maps a position pair onto the ASS numpad layout.
func alignment(vertical, horizontal string) int {
	row := 0
	switch vertical {
	case "center":
		row = 3
	case "top":
		row = 6
	}
	col := 2
	switch horizontal {
	case "left":
		col = 1
	case "right":
		col = 3
	}
	return row + col
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
