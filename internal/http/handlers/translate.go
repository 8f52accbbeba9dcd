package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"linguaflow/internal/config"
	dbpkg "linguaflow/internal/db"
	httpctx "linguaflow/internal/http/ctx"
	"linguaflow/internal/translate"
)

type translateTextRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

// chargeOrReject debits the fee and maps an insufficient balance to
// 402. Returns false when the handler must stop.
func chargeOrReject(ctx *fasthttp.RequestCtx, db *gorm.DB, userID uint, fee int64, meta datatypes.JSONMap) bool {
	err := dbpkg.Charge(db, userID, fee, "Service usage", meta)
	if err != nil {
		if errors.Is(err, dbpkg.ErrInsufficientCredits) {
			jsonError(ctx, fasthttp.StatusPaymentRequired, "Insufficient credits")
			return false
		}
		jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
		return false
	}
	observeCredits(dbpkg.TxTypeDebit, fee)
	return true
}

func targetLangOrDefault(lang string) string {
	if lang == "" {
		return translate.DefaultTargetLang
	}
	return lang
}

// TranslateText is the B2B text translation endpoint. Callers
// authenticate with an API key and every request costs cfg.TextFee.
func TranslateText(db *gorm.DB, cfg *config.Config, engine translate.Translator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		var req translateTextRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Text == "" {
			jsonError(ctx, fasthttp.StatusBadRequest, "Text required")
			return
		}
		lang := targetLangOrDefault(req.TargetLang)

		if !chargeOrReject(ctx, db, user.ID, cfg.TextFee, datatypes.JSONMap{
			"operation":   "translate.text",
			"target_lang": lang,
			"fee":         cfg.TextFee,
		}) {
			return
		}

		translated := engine.TranslateText(req.Text, lang)
		observeTranslation("text")

		jsonResponse(ctx, map[string]any{"translated": translated})
	}
}

// formFile pulls the named multipart file, enforcing presence and the
// upload size ceiling before any metering happens.
func formFile(ctx *fasthttp.RequestCtx, field string, maxBytes int64, missingMsg string) (*multipart.FileHeader, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil || fh == nil {
		jsonError(ctx, fasthttp.StatusBadRequest, missingMsg)
		return nil, false
	}
	if fh.Size > maxBytes {
		jsonError(ctx, fasthttp.StatusBadRequest, "File too large")
		return nil, false
	}
	return fh, true
}

// TranslateDocx accepts a .docx upload on an optional-auth route.
// Signed-in callers are charged cfg.DocumentFee; guests are served
// without metering.
func TranslateDocx(db *gorm.DB, cfg *config.Config, engine translate.Translator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		fh, ok := formFile(ctx, "file", cfg.MaxUploadBytes, "No file uploaded")
		if !ok {
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "No file uploaded")
			return
		}
		defer f.Close()

		text, err := translate.ExtractDocxText(f, fh.Size)
		if err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "Invalid document")
			return
		}

		lang := targetLangOrDefault(string(ctx.FormValue("targetLang")))

		// Guests bypass metering entirely on this route.
		if user, signedIn := httpctx.UserFromCtx(ctx); signedIn {
			if !chargeOrReject(ctx, db, user.ID, cfg.DocumentFee, datatypes.JSONMap{
				"operation":   "translate.docx",
				"target_lang": lang,
				"fee":         cfg.DocumentFee,
				"filename":    fh.Filename,
			}) {
				return
			}
		}

		translated := engine.TranslateDocument(text, lang)
		observeTranslation("docx")

		jsonResponse(ctx, map[string]any{
			"original":   text,
			"translated": translated,
		})
	}
}

// TranslateASR accepts an audio upload on an optional-auth route and
// returns the (mocked) transcription plus its translation. Signed-in
// callers are charged cfg.AudioFee; guests are served without metering.
func TranslateASR(db *gorm.DB, cfg *config.Config, engine translate.Translator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		fh, ok := formFile(ctx, "audio", cfg.MaxUploadBytes, "No audio uploaded")
		if !ok {
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "No audio uploaded")
			return
		}
		defer f.Close()

		audio, err := io.ReadAll(f)
		if err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "No audio uploaded")
			return
		}

		lang := targetLangOrDefault(string(ctx.FormValue("targetLang")))

		if user, signedIn := httpctx.UserFromCtx(ctx); signedIn {
			if !chargeOrReject(ctx, db, user.ID, cfg.AudioFee, datatypes.JSONMap{
				"operation":   "translate.asr",
				"target_lang": lang,
				"fee":         cfg.AudioFee,
				"filename":    fh.Filename,
			}) {
				return
			}
		}

		transcription, translation := engine.Transcribe(audio, lang)
		observeTranslation("asr")

		jsonResponse(ctx, map[string]any{
			"transcription": transcription,
			"translation":   translation,
		})
	}
}
