package generation

import (
	"fmt"

	"go-image-translator/internal/script"
)

// The labeled reply format below is what internal/parser expects; the
// sentinel line covers images with no readable text.
const imagePrompt = `Extract all readable text from this image and translate it.
If the extracted text is Korean, translate it to English. Otherwise translate it to Korean.
Reply in exactly this format, one field per line:
원본 텍스트: <the extracted text>
번역: <the translation>
If the image contains no readable text, reply with exactly: 텍스트 없음`

func textPrompt(text string, source script.Label) string {
	return fmt.Sprintf(`Translate the following %s text to %s.
Reply in exactly this format, one field per line:
원본 텍스트: <the original text>
번역: <the translation>

%s`, source.LanguageName(), source.Flip().LanguageName(), text)
}
