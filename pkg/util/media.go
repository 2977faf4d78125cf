package util

import (
	"context"
	"log"
	"time"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
)

// DocumentUploadResult is what the storage collaborator hands back for an
// uploaded verification document. PublicID is the opaque storage path kept on
// the verification record; delivery URLs are resolved elsewhere.
type DocumentUploadResult struct {
	PublicID string
	Width    int
	Height   int
}

func initCloudinary() (*cloudinary.Cloudinary, error) {
	cloudName := LoadEnvFor("CLOUDINARY_CLOUDNAME")
	apiKey := LoadEnvFor("CLOUDINARY_API_KEY")
	apiSecret := LoadEnvFor("CLOUDINARY_API_SECRET")

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return &cloudinary.Cloudinary{}, err
	}

	return cld, nil
}

// UploadDocument re-encodes and stores a verification document with the media
// provider and returns its opaque public id.
func UploadDocument(input interface{}) (DocumentUploadResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
	defer cancel()

	cld, err := initCloudinary()
	if err != nil {
		return DocumentUploadResult{}, err
	}

	uploadFolder := LoadEnvFor("CLOUDINARY_UPLOAD_FOLDER")
	uploadRes, err := cld.Upload.Upload(ctx, input, uploader.UploadParams{Folder: uploadFolder})
	if err != nil {
		return DocumentUploadResult{}, err
	}

	return DocumentUploadResult{
		PublicID: uploadRes.PublicID,
		Width:    uploadRes.Width,
		Height:   uploadRes.Height,
	}, nil
}

// DestroyDocument removes a stored document by its public id.
func DestroyDocument(publicID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
	defer cancel()

	cld, err := initCloudinary()
	if err != nil {
		return "", err
	}

	deleteResult, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		log.Println(err)
		return "", err
	}

	return deleteResult.Result, nil
}
