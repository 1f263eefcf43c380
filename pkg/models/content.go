package models

// Brand identifies which site a piece of content belongs to.
type Brand string

const (
	BrandFernanden Brand = "fernanden"
	BrandShe       Brand = "she"
	BrandDense     Brand = "dense"
	BrandCafee     Brand = "cafee"
)

// Status values used by publishable content.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
	StatusActive    = "active"
	StatusInactive  = "inactive"
)

// JSONMap holds free-form structured data such as product specifications
// or setting values.
type JSONMap map[string]any

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency,omitempty"`
	Category    string    `json:"category,omitempty"`
	Brand       Brand     `json:"brand,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Gallery     []string  `json:"gallery,omitempty"`
	Specs       JSONMap   `json:"specs,omitempty"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status,omitempty"`
	Featured    bool      `json:"featured"`
	OrderIndex  *int      `json:"order_index,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Brand       Brand     `json:"brand,omitempty"`
	Status      string    `json:"status,omitempty"`
	Featured    bool      `json:"featured"`
	PublishedAt Timestamp `json:"published_at"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

type Podcast struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug,omitempty"`
	Description   string    `json:"description,omitempty"`
	AudioURL      string    `json:"audio_url,omitempty"`
	CoverImage    string    `json:"cover_image,omitempty"`
	DurationSecs  int       `json:"duration_seconds,omitempty"`
	EpisodeNumber int       `json:"episode_number,omitempty"`
	Category      string    `json:"category,omitempty"`
	Status        string    `json:"status,omitempty"`
	Featured      bool      `json:"featured"`
	PublishedAt   Timestamp `json:"published_at"`
	CreatedAt     Timestamp `json:"created_at"`
}

type Service struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Category    string    `json:"category,omitempty"`
	Brand       Brand     `json:"brand,omitempty"`
	Status      string    `json:"status,omitempty"`
	Featured    bool      `json:"featured"`
	OrderIndex  *int      `json:"order_index,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

type TeamMember struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	Department string    `json:"department,omitempty"`
	Status     string    `json:"status,omitempty"`
	OrderIndex *int      `json:"order_index,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

type Testimonial struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name"`
	AuthorRole string    `json:"author_role,omitempty"`
	Company    string    `json:"company,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Status     string    `json:"status,omitempty"`
	Featured   bool      `json:"featured"`
	CreatedAt  Timestamp `json:"created_at"`
}

// MediaFile records an already uploaded asset; the upload itself happens
// elsewhere and only the public URL is stored.
type MediaFile struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	Folder    string    `json:"folder,omitempty"`
	AltText   string    `json:"alt_text,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

type NewsletterSubscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Brand     Brand     `json:"brand,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

type SiteText struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Section   string    `json:"section,omitempty"`
	Locale    string    `json:"locale,omitempty"`
	Value     string    `json:"value"`
	UpdatedAt Timestamp `json:"updated_at"`
}

type SiteSetting struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     JSONMap   `json:"value,omitempty"`
	UpdatedAt Timestamp `json:"updated_at"`
}
