package content

import (
	"fmt"
	"io/fs"
)

const siteURL = "https://funmoneygames.com/"

func defaultSite() Site {
	title := "Fun Money Games | Free Financial Literacy Games, Budget Challenges & Printable Worksheets"
	return Site{
		Name:        "Fun Money Games",
		Domain:      "FunMoneyGames.com",
		URL:         siteURL,
		Title:       title,
		Description: "Play free online money games that teach budgeting, saving, investing and smart spending. Great for kids, teens, classrooms, and adults. Includes printable worksheets and step-by-step challenges.",
		Keywords: []string{
			"money games",
			"budget games for kids",
			"financial literacy games",
			"saving money challenges",
			"allowance tracker printable",
			"investing games online",
			"budget hero game",
			"fun finance activities",
		},
		Robots:                "index,follow,max-image-preview:large",
		OGImage:               siteURL + "og-image.jpg",
		ThemeColor:            "#fef9c3",
		StructuredDescription: "Free online games and printables that teach money skills: budgeting, saving, investing, spending wisely.",
	}
}

// Games returns the featured game table in display order.
func Games() []GameListing {
	return []GameListing{
		{Title: "Budget Hero", Description: "Learn to balance income vs. expenses"},
		{Title: "Smart Saver Race", Description: "Beat the clock saving $500 in-game currency"},
		{Title: "Invest-or-Bust", Description: "Simulate stock market ups and downs"},
		{Title: "Allowance Tracker", Description: "Teach kids to plan weekly allowance"},
		{Title: "Credit Score Quest", Description: "Unlock rewards by paying bills on time"},
		{Title: "Grocery List Match", Description: "Compare store prices and save virtual cash"},
	}
}

// FAQ returns the question/answer table in display order.
func FAQ() []FaqEntry {
	return []FaqEntry{
		{
			Question: "Are the games really free?",
			Answer:   "Yes. All Fun Money Games are free to play online with no hidden fees or paywalls.",
		},
		{
			Question: "Do I need to create an account?",
			Answer:   "No sign-up required. Just pick a game and start playing.",
		},
		{
			Question: "Do the games collect personal data?",
			Answer:   "No. We do not store names, emails, or any personal info -safe for classrooms and kids.",
		},
		{
			Question: "Can I use the games on phones and tablets?",
			Answer:   "Yes, they are mobile-friendly and optimized for touchscreens.",
		},
		{
			Question: "Are these games suitable for teaching kids?",
			Answer:   "Yes. Many are designed for financial literacy education with COPPA-safe standards.",
		},
		{
			Question: "Do you offer printable materials?",
			Answer:   "Yes. Free worksheets like allowance trackers and budgeting charts are available to download.",
		},
	}
}

func defaultHero() Hero {
	return Hero{
		Heading:        "Fun & Free Money Games for All Ages",
		Intro:          "Learn money-smart habits by playing games: budget challenges, saving races, investing simulators, and allowance trackers. Perfect for classrooms, parents, or anyone who wants to boost financial skills while having fun.",
		CTALabel:       "Browse Popular Games ↓",
		CTAAnchor:      "#games",
		PopularHeading: "Popular Right Now",
		Popular: []string{
			"Budget Hero Challenge",
			"Smart Saver Race",
			"Allowance Tracker for Kids",
			"Invest-or-Bust Simulator",
			"Grocery List Price Match",
		},
	}
}

func defaultInfoCards() []InfoCard {
	return []InfoCard{
		{
			Heading: "Financial Literacy Made Fun",
			Body:    "We believe learning about money should be as exciting as a game night. Our games teach budgeting, saving, credit, and smart spending habits in short challenges that reward wise decisions.",
		},
		{
			Heading: "Free Printable Worksheets",
			Body:    "Teachers and parents can download allowance charts, grocery budgeting sheets, and saving-goal trackers to use offline alongside our online games.",
		},
		{
			Heading: "Classroom & Homeschool Friendly",
			Body:    "Games work on Chromebooks, tablets, and smartboards -perfect for classroom budgeting lessons, math drills, and after-school clubs.",
		},
		{
			Heading: "Advertiser-Friendly Finance Keywords",
			Body:    "Topics such as credit, investing, and saving attract premium finance advertisers, which means higher-value display ads while keeping the site free for users.",
		},
	}
}

// Default builds the content shipped with the binary, including the embedded articles.
func Default() (*Content, error) {
	articlesFS, err := fs.Sub(embeddedArticles, "articles")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded articles: %w", err)
	}
	return Load(articlesFS)
}

// Load builds the default copy with articles read from fsys instead of the embedded set.
func Load(articlesFS fs.FS) (*Content, error) {
	articles, err := LoadArticles(articlesFS)
	if err != nil {
		return nil, err
	}

	c := &Content{
		Site:         defaultSite(),
		TopBarLabel:  "Free to play",
		UpdatedLabel: "Last updated",
		Hero:         defaultHero(),
		GamesHeading: "Featured Learning Games",
		GamesIntro:   "Play directly in your browser -no installs or sign-ups needed.",
		PlayLabel:    "Play Now",
		Games:        Games(),
		InfoCards:    defaultInfoCards(),
		Articles:     articles,
		FAQHeading:   "Frequently Asked Questions",
		FAQ:          FAQ(),
		Tagline:      "Free games & worksheets for learning smart money habits",
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	return c, nil
}
