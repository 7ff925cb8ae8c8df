package backend

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FallbackEmotion is the asset key used when a label has no matching files
const FallbackEmotion = "error"

// Emotions are the labels the model may assign to an inbound message.
// Each label maps to a PNG under the emoticon directory.
var Emotions = []string{
	"twarz_lek",
	"twarz_nuda",
	"twarz_radosc",
	"twarz_smutek",
	"twarz_spokoj",
	"twarz_zaskoczenie",
	"twarz_zlosc",
}

// Topics are the notarial subjects with a matching informational PDF
var Topics = []string{
	"darowizna_mieszkania_lub_domu_obowiazki_podatkowe_i_formalne",
	"dzial_spadku_umowny_krok_po_kroku_z_notariuszem",
	"intercyza_umowa_majatkowa_malzenska_wyjasnienie_i_koszty",
	"kontakt_godziny_pracy_notariusza_podstawowe_informacje",
	"sprzedaz_nieruchomosci_mieszkanie_procedura_koszty_wymagane_dokumenty",
}

// FallbackTopic is attached when the model cannot pin down a subject
const FallbackTopic = "kontakt_godziny_pracy_notariusza_podstawowe_informacje"

// AssetLibrary resolves emotion and topic keys to base64-encoded files on
// disk. Files are read per request; the sets are small and the reply cache
// keeps repeat reads off the hot path.
type AssetLibrary struct {
	emoticonDir string
	pdfDir      string
	logger      *zap.Logger
}

// NewAssetLibrary creates an asset library over the two directories
func NewAssetLibrary(emoticonDir, pdfDir string, logger *zap.Logger) *AssetLibrary {
	return &AssetLibrary{
		emoticonDir: emoticonDir,
		pdfDir:      pdfDir,
		logger:      logger,
	}
}

// EmotionAssets returns the PNG and PDF for an emotion label, falling back
// to the error pair when either file is missing
func (a *AssetLibrary) EmotionAssets(emotion string) (*ImagePayload, *PDFPayload) {
	png := a.readBase64(filepath.Join(a.emoticonDir, emotion+".png"))
	pdf := a.readBase64(filepath.Join(a.pdfDir, emotion+".pdf"))

	if png == "" || pdf == "" {
		a.logger.Warn("Missing emotion assets, using fallback",
			zap.String("emotion", emotion))
		emotion = FallbackEmotion
		png = a.readBase64(filepath.Join(a.emoticonDir, emotion+".png"))
		pdf = a.readBase64(filepath.Join(a.pdfDir, emotion+".pdf"))
	}

	var img *ImagePayload
	if png != "" {
		img = &ImagePayload{
			Base64:      png,
			ContentType: "image/png",
			Filename:    fmt.Sprintf("%s.png", emotion),
		}
	}
	var doc *PDFPayload
	if pdf != "" {
		doc = &PDFPayload{
			Base64:   pdf,
			Filename: fmt.Sprintf("%s.pdf", emotion),
		}
	}
	return img, doc
}

// TopicPDF returns the informational PDF for a topic key, or nil when the
// file is missing
func (a *AssetLibrary) TopicPDF(topic string) *PDFPayload {
	b64 := a.readBase64(filepath.Join(a.pdfDir, topic+".pdf"))
	if b64 == "" {
		a.logger.Warn("Missing topic PDF", zap.String("topic", topic))
		return nil
	}
	return &PDFPayload{
		Base64:   b64,
		Filename: fmt.Sprintf("%s.pdf", topic),
	}
}

func (a *AssetLibrary) readBase64(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}
