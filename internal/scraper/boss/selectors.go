package boss

// Site selectors in one place. These track the live markup and are the first
// thing to check when extraction starts coming back empty.
const (
	//interested-jobs listing page
	selJobList  = "ul.user-jobs-ul"
	selJobItem  = "ul.user-jobs-ul li.item-boss"
	selJobLink  = "div.job-name a.name"
	selNextIcon = "div.pagination-area i.ui-icon-arrow-right"

	//detail page
	selPrimary       = "div.info-primary"
	selTitle         = "h1"
	selSalary        = "span.salary"
	selCompany       = ".company-info-box .company-name"
	selRecruiterInfo = ".boss-info-attr"
	selCity          = "p a.text-city"
	//the site ships this class name with the typo; the spelled-out variant
	//shows up on some layouts, so both are tried
	selExperience    = "p span.text-experiece"
	selExperienceAlt = "p span.text-experience"
	selDegree        = "p span.text-degree"
	selWelfareTags   = ".job-banner .tag-container-new .tag-all.job-tags span"
	selKeywordTags   = "ul.job-keyword-list li"
	selDescription   = ".job-detail-section:has(h3:text('职位描述')) .job-sec-text"
)
